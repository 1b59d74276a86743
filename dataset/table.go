// Package dataset holds tabular data in memory: an immutable Table of
// numeric and categorical columns keyed by an integer row id, the CSV loader
// and helpers for the SAheart schema.
package dataset

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// Kind is the storage kind of a column.
type Kind int

const (
	// Numeric columns hold float64 values.
	Numeric Kind = iota
	// Categorical columns hold string labels.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is one named attribute. Exactly one of Numbers or Labels is used,
// depending on Kind.
type Column struct {
	Name    string
	Kind    Kind
	Numbers []float64
	Labels  []string
}

// NumericColumn builds a numeric column.
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Numbers: values}
}

// CategoricalColumn builds a categorical column.
func CategoricalColumn(name string, labels []string) Column {
	return Column{Name: name, Kind: Categorical, Labels: labels}
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	if c.Kind == Categorical {
		return len(c.Labels)
	}
	return len(c.Numbers)
}

func (c Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Numbers != nil {
		out.Numbers = append([]float64(nil), c.Numbers...)
	}
	if c.Labels != nil {
		out.Labels = append([]string(nil), c.Labels...)
	}
	return out
}

func (c Column) take(rows []int) Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Categorical {
		out.Labels = make([]string, len(rows))
		for i, r := range rows {
			out.Labels[i] = c.Labels[r]
		}
		return out
	}
	out.Numbers = make([]float64, len(rows))
	for i, r := range rows {
		out.Numbers[i] = c.Numbers[r]
	}
	return out
}

// Table is an ordered, immutable collection of rows sharing one schema.
// Every method that changes shape returns a new Table.
type Table struct {
	ids     []int
	columns []Column
	index   map[string]int
}

// NewTable validates and copies its inputs. ids must be unique and every
// column must have len(ids) values.
func NewTable(ids []int, columns []Column) (*Table, error) {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, errors.NewValueError("NewTable", fmt.Sprintf("duplicate row id %d", id))
		}
		seen[id] = struct{}{}
	}

	t := &Table{
		ids:     append([]int(nil), ids...),
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if _, dup := t.index[c.Name]; dup {
			return nil, errors.NewSchemaError(c.Name, "duplicate column name")
		}
		if c.Len() != len(ids) {
			return nil, errors.NewDimensionError("NewTable("+c.Name+")", len(ids), c.Len(), 0)
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c.clone())
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.ids)
}

// IDs returns a copy of the row identifiers in row order.
func (t *Table) IDs() []int {
	return append([]int(nil), t.ids...)
}

// Columns returns column names in schema order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, errors.NewSchemaError(name, "column not found")
	}
	return t.columns[i].clone(), nil
}

// Numeric returns a copy of the values of a numeric column.
func (t *Table) Numeric(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Numeric {
		return nil, errors.NewSchemaError(name, "expected a numeric column, got "+c.Kind.String())
	}
	return c.Numbers, nil
}

// Categorical returns a copy of the labels of a categorical column.
func (t *Table) Categorical(name string) ([]string, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Categorical {
		return nil, errors.NewSchemaError(name, "expected a categorical column, got "+c.Kind.String())
	}
	return c.Labels, nil
}

// Drop returns a table without the named columns. Dropping a column that
// does not exist is a SchemaError.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !t.Has(n) {
			return nil, errors.NewSchemaError(n, "column not found")
		}
		drop[n] = struct{}{}
	}
	kept := make([]Column, 0, len(t.columns))
	for _, c := range t.columns {
		if _, ok := drop[c.Name]; !ok {
			kept = append(kept, c)
		}
	}
	return NewTable(t.ids, kept)
}

// WithColumns returns a table with cols appended, or replacing existing
// columns of the same name in place.
func (t *Table) WithColumns(cols ...Column) (*Table, error) {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	for _, c := range cols {
		if i, ok := t.index[c.Name]; ok {
			out[i] = c
			continue
		}
		out = append(out, c)
	}
	return NewTable(t.ids, out)
}

// Take returns the rows at the given positions, in that order.
func (t *Table) Take(rows []int) (*Table, error) {
	ids := make([]int, len(rows))
	for i, r := range rows {
		if r < 0 || r >= len(t.ids) {
			return nil, errors.NewValueError("Table.Take", fmt.Sprintf("row %d out of range [0, %d)", r, len(t.ids)))
		}
		ids[i] = t.ids[r]
	}
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.take(rows)
	}
	return &Table{ids: ids, columns: cols, index: t.index}, nil
}

// Features returns every column except target as a row-major matrix,
// together with the feature names in column order. All feature columns must
// be numeric; encode categorical columns first.
func (t *Table) Features(target string) (*mat.Dense, []string, error) {
	if t.Len() == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "Table.Features")
	}
	names := make([]string, 0, len(t.columns))
	cols := make([]Column, 0, len(t.columns))
	for _, c := range t.columns {
		if c.Name == target {
			continue
		}
		if c.Kind != Numeric {
			return nil, nil, errors.NewSchemaError(c.Name, "categorical feature must be encoded before building the feature matrix")
		}
		names = append(names, c.Name)
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return nil, nil, errors.NewSchemaError(target, "table has no feature columns besides the target")
	}

	X := mat.NewDense(t.Len(), len(cols), nil)
	for j, c := range cols {
		X.SetCol(j, c.Numbers)
	}
	return X, names, nil
}

// Target returns the target column as an n×1 matrix.
func (t *Table) Target(target string) (*mat.Dense, error) {
	if !t.Has(target) {
		return nil, errors.NewSchemaError(target, "target column not found")
	}
	values, err := t.Numeric(target)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Table.Target")
	}
	return mat.NewDense(len(values), 1, values), nil
}

// XY returns the feature matrix, target vector and feature names.
// The invariant rows(X) == rows(y) always holds.
func (t *Table) XY(target string) (X, y *mat.Dense, names []string, err error) {
	y, err = t.Target(target)
	if err != nil {
		return nil, nil, nil, err
	}
	X, names, err = t.Features(target)
	if err != nil {
		return nil, nil, nil, err
	}
	return X, y, names, nil
}

// Summary holds descriptive statistics for one numeric column.
type Summary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
}

// Describe summarises every numeric column. Std is the sample standard
// deviation.
func (t *Table) Describe() []Summary {
	out := make([]Summary, 0, len(t.columns))
	for _, c := range t.columns {
		if c.Kind != Numeric || len(c.Numbers) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(c.Numbers, nil)
		out = append(out, Summary{
			Name:  c.Name,
			Count: len(c.Numbers),
			Mean:  mean,
			Std:   std,
			Min:   floats.Min(c.Numbers),
			Max:   floats.Max(c.Numbers),
		})
	}
	return out
}

// Levels returns the sorted distinct labels of a categorical column.
func (t *Table) Levels(name string) ([]string, error) {
	labels, err := t.Categorical(name)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, l := range labels {
		set[l] = struct{}{}
	}
	levels := make([]string, 0, len(set))
	for l := range set {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	return levels, nil
}

// WithColumn is WithColumns for a single column.
func (t *Table) WithColumn(c Column) (*Table, error) {
	return t.WithColumns(c)
}
