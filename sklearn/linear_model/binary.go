package linear_model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/core/model"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// binaryLinear holds what every fitted two-class linear model shares: the
// weights, the intercept and the two class labels. The decision value is
// w·x + b and the positive class is chosen when it is greater than zero.
type binaryLinear struct {
	state *model.StateManager

	// Coef_ は特徴量ごとの重み
	Coef_ []float64
	// Intercept_ は切片
	Intercept_ float64

	classes_ []int
}

func newBinaryLinear() binaryLinear {
	return binaryLinear{state: model.NewStateManager()}
}

// IsFitted reports whether Fit has completed.
func (b *binaryLinear) IsFitted() bool {
	return b.state.IsFitted()
}

// Classes returns the two labels seen during Fit, in ascending order.
func (b *binaryLinear) Classes() []int {
	return append([]int(nil), b.classes_...)
}

// Coef returns a copy of the fitted weights.
func (b *binaryLinear) Coef() []float64 {
	return append([]float64(nil), b.Coef_...)
}

// Intercept returns the fitted intercept.
func (b *binaryLinear) Intercept() float64 {
	return b.Intercept_
}

// checkXY validates shapes and returns the sorted class labels, which must
// be exactly two integers.
func checkXY(op string, X, y mat.Matrix) (nSamples, nFeatures int, classes []int, err error) {
	if X == nil || y == nil {
		return 0, 0, nil, errors.NewValueError(op, "X and y must not be nil")
	}
	nSamples, nFeatures = X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return 0, 0, nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return 0, 0, nil, errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return 0, 0, nil, errors.NewDimensionError(op, 1, yCols, 1)
	}

	seen := make(map[int]struct{})
	for i := 0; i < yRows; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) {
			return 0, 0, nil, errors.Wrapf(errors.ErrNotBinary, "%s: label %v is not an integer", op, v)
		}
		seen[int(v)] = struct{}{}
	}
	if len(seen) != 2 {
		return 0, 0, nil, errors.Wrapf(errors.ErrNotBinary, "%s: found %d classes, need exactly 2", op, len(seen))
	}
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return nSamples, nFeatures, classes, nil
}

// decision computes w·x + b for every row of X.
func (b *binaryLinear) decision(modelName, method string, X mat.Matrix) (*mat.Dense, error) {
	if err := b.state.RequireFitted(modelName, method); err != nil {
		return nil, err
	}
	if err := b.state.RequireFeatures(modelName+"."+method, X); err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		out.Set(i, 0, floats.Dot(row, b.Coef_)+b.Intercept_)
	}
	return out, nil
}

// labelsFromDecision maps positive scores to the second class.
func (b *binaryLinear) labelsFromDecision(d *mat.Dense) *mat.Dense {
	rows, _ := d.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		if d.At(i, 0) > 0 {
			out.Set(i, 0, float64(b.classes_[1]))
		} else {
			out.Set(i, 0, float64(b.classes_[0]))
		}
	}
	return out
}

// probaFromPositive builds the n×2 [P(class0), P(class1)] matrix.
func probaFromPositive(d *mat.Dense, positive func(float64) float64) *mat.Dense {
	rows, _ := d.Dims()
	out := mat.NewDense(rows, 2, nil)
	for i := 0; i < rows; i++ {
		p := positive(d.At(i, 0))
		out.Set(i, 0, 1-p)
		out.Set(i, 1, p)
	}
	return out
}

// sigmoid computes the logistic function without overflowing exp.
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

// Sigmoid is the logistic link 1 / (1 + e^-z) that turns a decision value
// into P(y = 1).
func Sigmoid(z float64) float64 {
	return sigmoid(z)
}

var (
	_ model.Classifier = (*SGDClassifier)(nil)
	_ model.Classifier = (*LogisticRegression)(nil)
)
