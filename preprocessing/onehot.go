package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/logitlab/dataset"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/pkg/log"
)

// HandleUnknown values.
const (
	UnknownError  = "error"
	UnknownIgnore = "ignore"
)

// OneHotEncoder replaces one categorical column with 0/1 indicator columns
// named <column>_<label>, one per label seen during Fit, in sorted label
// order. The indicators are appended after the remaining columns.
type OneHotEncoder struct {
	Column string

	// DropFirst omits the indicator of the first category, leaving k-1
	// columns.
	DropFirst bool

	// HandleUnknown decides what Transform does with a label not seen
	// during Fit: "error" (default) or "ignore", which encodes all zeros.
	HandleUnknown string

	// Categories_ は学習されたラベル（昇順）
	Categories_ []string

	fitted bool
}

// EncoderOption configures a OneHotEncoder.
type EncoderOption func(*OneHotEncoder)

// WithDropFirst drops the first category's indicator.
func WithDropFirst() EncoderOption {
	return func(e *OneHotEncoder) {
		e.DropFirst = true
	}
}

// WithHandleUnknown sets the policy for unseen labels.
func WithHandleUnknown(policy string) EncoderOption {
	return func(e *OneHotEncoder) {
		e.HandleUnknown = policy
	}
}

// NewOneHotEncoder creates an encoder for column.
func NewOneHotEncoder(column string, opts ...EncoderOption) *OneHotEncoder {
	e := &OneHotEncoder{Column: column, HandleUnknown: UnknownError}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fit learns the sorted label set of the column.
func (e *OneHotEncoder) Fit(t *dataset.Table) error {
	if e.HandleUnknown != UnknownError && e.HandleUnknown != UnknownIgnore {
		return errors.NewValidationError("handle_unknown", "must be \"error\" or \"ignore\"", e.HandleUnknown)
	}
	if !t.Has(e.Column) {
		return errors.NewSchemaError(e.Column, "column to encode not found")
	}
	levels, err := t.Levels(e.Column)
	if err != nil {
		return errors.NewSchemaError(e.Column, "column to encode is not categorical")
	}
	if len(levels) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "OneHotEncoder.Fit")
	}
	e.Categories_ = levels
	e.fitted = true
	return nil
}

// FeatureNames returns the indicator column names Transform produces.
func (e *OneHotEncoder) FeatureNames() []string {
	cats := e.Categories_
	if e.DropFirst && len(cats) > 0 {
		cats = cats[1:]
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = e.Column + "_" + c
	}
	return names
}

// Transform returns a new table with the column replaced by its
// indicators. The input table is not modified.
func (e *OneHotEncoder) Transform(t *dataset.Table) (*dataset.Table, error) {
	if !e.fitted {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if !t.Has(e.Column) {
		return nil, errors.NewSchemaError(e.Column, "column to encode not found")
	}
	labels, err := t.Categorical(e.Column)
	if err != nil {
		return nil, errors.NewSchemaError(e.Column, "column to encode is not categorical")
	}

	position := make(map[string]int, len(e.Categories_))
	for i, c := range e.Categories_ {
		position[c] = i
	}
	indicators := make([][]float64, len(e.Categories_))
	for i := range indicators {
		indicators[i] = make([]float64, len(labels))
	}
	for row, label := range labels {
		k, ok := position[label]
		if !ok {
			if e.HandleUnknown == UnknownIgnore {
				continue
			}
			return nil, errors.NewSchemaError(e.Column, fmt.Sprintf("unknown category %q in row %d", label, row))
		}
		indicators[k][row] = 1
	}

	start := 0
	if e.DropFirst {
		start = 1
	}
	names := e.FeatureNames()
	cols := make([]dataset.Column, 0, len(names))
	for i, name := range names {
		cols = append(cols, dataset.NumericColumn(name, indicators[start+i]))
	}

	rest, err := t.Drop(e.Column)
	if err != nil {
		return nil, err
	}
	out, err := rest.WithColumns(cols...)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("preprocessing").Debug("One-hot encoded column",
		log.OperationKey, log.OperationEncode,
		log.PhaseKey, log.PhasePreprocessing,
		"column", e.Column,
		"categories", len(e.Categories_),
		log.SamplesKey, t.Len(),
	)
	return out, nil
}

// FitTransform fits on t and encodes it.
func (e *OneHotEncoder) FitTransform(t *dataset.Table) (*dataset.Table, error) {
	if err := e.Fit(t); err != nil {
		return nil, err
	}
	return e.Transform(t)
}

// OneHotEncode encodes column with one indicator per observed label. For
// SAheart it turns famhist into famhist_Absent and famhist_Present.
func OneHotEncode(t *dataset.Table, column string) (*dataset.Table, error) {
	return NewOneHotEncoder(column).FitTransform(t)
}

// Categories returns a copy of the learned labels.
func (e *OneHotEncoder) Categories() []string {
	return append([]string(nil), e.Categories_...)
}
