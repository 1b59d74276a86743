package model_selection

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// Splitter produces cross-validation folds over the rows of X.
type Splitter interface {
	Split(X, y mat.Matrix) ([]Fold, error)
	GetNSplits() int
}

// Fold holds the row positions used for fitting and for validation.
type Fold struct {
	Train []int
	Test  []int
}

// KFold implements k-fold cross-validation splitter
type KFold struct {
	NSplits     int
	Shuffle     bool
	RandomState int64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomState int64) *KFold {
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomState: randomState}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split assigns consecutive blocks of (optionally shuffled) rows to folds.
// The first n % k folds get one extra row.
func (kf *KFold) Split(X, _ mat.Matrix) ([]Fold, error) {
	nSamples, _ := X.Dims()
	if err := checkSplits(kf.NSplits, nSamples); err != nil {
		return nil, err
	}

	indices := seq(0, nSamples)
	if kf.Shuffle {
		r := newRand(kf.RandomState)
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	assignment := make([]int, nSamples)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits
	current := 0
	for f := 0; f < kf.NSplits; f++ {
		size := foldSize
		if f < remainder {
			size++
		}
		for _, idx := range indices[current : current+size] {
			assignment[idx] = f
		}
		current += size
	}
	return foldsFromAssignment(assignment, kf.NSplits, indices), nil
}

// StratifiedKFold implements stratified k-fold cross-validation
type StratifiedKFold struct {
	NSplits     int
	Shuffle     bool
	RandomState int64
}

// NewStratifiedKFold creates a new stratified k-fold splitter
func NewStratifiedKFold(nSplits int, shuffle bool, randomState int64) *StratifiedKFold {
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, RandomState: randomState}
}

// GetNSplits returns the number of splits
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split deals the rows of every class round-robin over the folds, so each
// fold's class balance matches the whole set to within one row per class.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) ([]Fold, error) {
	nSamples, _ := X.Dims()
	if err := checkSplits(skf.NSplits, nSamples); err != nil {
		return nil, err
	}
	if y == nil {
		return nil, errors.NewValueError("StratifiedKFold.Split", "y is required")
	}
	if yRows, _ := y.Dims(); yRows != nSamples {
		return nil, errors.NewDimensionError("StratifiedKFold.Split", nSamples, yRows, 0)
	}

	labels := mat.Col(nil, 0, y)
	classes, byClass := groupByClass(labels)

	var r *rand.Rand
	if skf.Shuffle {
		r = newRand(skf.RandomState)
	}

	assignment := make([]int, nSamples)
	next := 0
	for _, c := range classes {
		idx := byClass[c]
		if r != nil {
			r.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		}
		for _, row := range idx {
			assignment[row] = next % skf.NSplits
			next++
		}
	}
	return foldsFromAssignment(assignment, skf.NSplits, seq(0, nSamples)), nil
}

// foldsFromAssignment turns a row→fold map into folds. order decides the
// row order inside each fold.
func foldsFromAssignment(assignment []int, k int, order []int) []Fold {
	folds := make([]Fold, k)
	for _, row := range order {
		f := assignment[row]
		folds[f].Test = append(folds[f].Test, row)
	}
	for f := range folds {
		folds[f].Train = make([]int, 0, len(assignment)-len(folds[f].Test))
		for row, g := range assignment {
			if g != f {
				folds[f].Train = append(folds[f].Train, row)
			}
		}
	}
	return folds
}

func checkSplits(k, n int) error {
	if k < 2 {
		return errors.NewValidationError("n_splits", "must be at least 2", k)
	}
	if n < k {
		return errors.NewValueError("KFold.Split",
			fmt.Sprintf("cannot have n_splits=%d greater than the number of samples %d", k, n))
	}
	return nil
}

// takeRows copies the given rows of m into a new matrix.
func takeRows(m mat.Matrix, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	buf := make([]float64, c)
	for i, r := range rows {
		mat.Row(buf, r, m)
		out.SetRow(i, buf)
	}
	return out
}
