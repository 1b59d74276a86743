package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/pkg/log"
)

type loadOptions struct {
	delimiter   rune
	categorical map[string]bool
}

// LoadOption customises CSV parsing.
type LoadOption func(*loadOptions)

// WithDelimiter sets the field separator. The default is a comma.
func WithDelimiter(d rune) LoadOption {
	return func(o *loadOptions) {
		o.delimiter = d
	}
}

// WithCategorical declares columns as categorical. When set, every other
// column must parse as numeric and a bad value is reported with its line
// number instead of silently turning the column categorical.
func WithCategorical(names ...string) LoadOption {
	return func(o *loadOptions) {
		if o.categorical == nil {
			o.categorical = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.categorical[n] = true
		}
	}
}

// LoadCSV reads a delimited file into a Table. The first column holds the
// integer row id. Files ending in .gz, .zst or .lz4 are decompressed.
func LoadCSV(path string, opts ...LoadOption) (*Table, error) {
	logger := log.GetLoggerWithName("dataset")

	rc, err := Open(path)
	if err != nil {
		logger.Error("Failed to open dataset", log.PathKey, path, "error", err)
		return nil, err
	}
	defer rc.Close()

	t, err := ReadCSV(rc, path, opts...)
	if err != nil {
		logger.Error("Failed to load dataset", log.PathKey, path, "error", err)
		return nil, err
	}
	logger.Info("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.SamplesKey, t.Len(),
		log.FeaturesKey, len(t.columns),
	)
	return t, nil
}

// ReadCSV parses CSV from r. name is only used in error messages.
func ReadCSV(r io.Reader, name string, opts ...LoadOption) (*Table, error) {
	o := loadOptions{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}

	cr := csv.NewReader(r)
	cr.Comma = o.delimiter
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewLoadError(name, 1, errors.New("missing header row"))
	}
	if err != nil {
		return nil, csvError(name, err)
	}
	if len(header) < 2 {
		return nil, errors.NewLoadError(name, 1, errors.New("header needs a row id column and at least one attribute"))
	}
	names := make([]string, len(header)-1)
	for i, h := range header[1:] {
		names[i] = strings.TrimSpace(h)
		if names[i] == "" {
			return nil, errors.NewLoadError(name, 1, errors.Newf("column %d has an empty name", i+2))
		}
	}

	var (
		ids   []int
		raw   = make([][]string, len(names))
		lines []int
	)
	seen := make(map[int]int)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(name, err)
		}
		line, _ := cr.FieldPos(0)

		id, err := strconv.Atoi(strings.TrimSpace(strings.Trim(rec[0], `"`)))
		if err != nil {
			return nil, errors.NewLoadError(name, line, errors.Newf("row id %q is not an integer", rec[0]))
		}
		if prev, dup := seen[id]; dup {
			return nil, errors.NewLoadError(name, line, errors.Newf("row id %d already used on line %d", id, prev))
		}
		seen[id] = line
		ids = append(ids, id)
		lines = append(lines, line)
		for j, v := range rec[1:] {
			raw[j] = append(raw[j], strings.TrimSpace(v))
		}
	}
	if len(ids) == 0 {
		return nil, errors.NewLoadError(name, 0, errors.ErrEmptyData)
	}

	cols := make([]Column, len(names))
	for j, n := range names {
		c, err := buildColumn(n, raw[j], o)
		if err != nil {
			var pe *parseFailure
			if errors.As(err, &pe) {
				return nil, errors.NewLoadError(name, lines[pe.row], err)
			}
			return nil, errors.NewLoadError(name, 0, err)
		}
		cols[j] = c
	}

	t, err := NewTable(ids, cols)
	if err != nil {
		return nil, errors.NewLoadError(name, 0, err)
	}
	return t, nil
}

type parseFailure struct {
	column string
	value  string
	row    int
}

func (p *parseFailure) Error() string {
	return "column " + strconv.Quote(p.column) + ": " + strconv.Quote(p.value) + " is not a number"
}

func buildColumn(name string, values []string, o loadOptions) (Column, error) {
	if o.categorical[name] {
		return CategoricalColumn(name, values), nil
	}
	nums := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			if o.categorical != nil {
				return Column{}, &parseFailure{column: name, value: v, row: i}
			}
			return CategoricalColumn(name, values), nil
		}
		nums[i] = f
	}
	return NumericColumn(name, nums), nil
}

func csvError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return errors.NewLoadError(name, pe.Line, pe.Err)
	}
	return errors.NewLoadError(name, 0, err)
}
