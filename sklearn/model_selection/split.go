// Package model_selection splits data for evaluation and searches
// hyperparameter grids with cross-validation.
package model_selection

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/dataset"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/pkg/log"
)

// DefaultTestSize is the fraction of rows held out when no size is given.
const DefaultTestSize = 0.25

type splitConfig struct {
	testSize    float64
	randomState int64
	shuffle     bool
	stratify    bool
}

// SplitOption configures TrainTestSplit.
type SplitOption func(*splitConfig)

// WithTestSize sets the held-out fraction, strictly between 0 and 1.
func WithTestSize(size float64) SplitOption {
	return func(c *splitConfig) {
		c.testSize = size
	}
}

// WithRandomState seeds the shuffle. The same seed always produces the same
// partition of the same table.
func WithRandomState(seed int64) SplitOption {
	return func(c *splitConfig) {
		c.randomState = seed
	}
}

// WithShuffle toggles shuffling. Without it the last rows become the test
// subset.
func WithShuffle(shuffle bool) SplitOption {
	return func(c *splitConfig) {
		c.shuffle = shuffle
	}
}

// WithStratify keeps the class proportions of the target equal on both
// sides of the split. It requires shuffling.
func WithStratify(stratify bool) SplitOption {
	return func(c *splitConfig) {
		c.stratify = stratify
	}
}

// Split holds the two disjoint subsets produced by TrainTestSplit.
type Split struct {
	Train  *dataset.Table
	Test   *dataset.Table
	Target string
}

// Views are the matrices derived from a Split.
type Views struct {
	XTrain, YTrain *mat.Dense
	XTest, YTest   *mat.Dense
	FeatureNames   []string
}

// XY builds the train and test feature matrices and target vectors.
func (s *Split) XY() (*Views, error) {
	XTrain, yTrain, names, err := s.Train.XY(s.Target)
	if err != nil {
		return nil, err
	}
	XTest, yTest, _, err := s.Test.XY(s.Target)
	if err != nil {
		return nil, err
	}
	return &Views{XTrain: XTrain, YTrain: yTrain, XTest: XTest, YTest: yTest, FeatureNames: names}, nil
}

// TrainTestSplit partitions the rows of t into a train and a test table.
// The test side gets ceil(testSize*n) rows, so 462 rows at the default size
// split 346/116.
func TrainTestSplit(t *dataset.Table, target string, opts ...SplitOption) (*Split, error) {
	cfg := splitConfig{testSize: DefaultTestSize, shuffle: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := t.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "TrainTestSplit")
	}
	if !t.Has(target) {
		return nil, errors.NewSchemaError(target, "target column not found")
	}
	if cfg.testSize <= 0 || cfg.testSize >= 1 {
		return nil, errors.NewValidationError("test_size", "must be in (0, 1)", cfg.testSize)
	}
	if cfg.stratify && !cfg.shuffle {
		return nil, errors.NewValidationError("stratify", "stratified split requires shuffle", cfg.stratify)
	}

	nTest := int(math.Ceil(cfg.testSize * float64(n)))
	nTrain := n - nTest
	if nTrain <= 0 || nTest <= 0 {
		return nil, errors.NewValidationError("test_size",
			"leaves one side of the split empty", cfg.testSize)
	}

	var trainIdx, testIdx []int
	switch {
	case cfg.stratify:
		y, err := t.Numeric(target)
		if err != nil {
			return nil, err
		}
		trainIdx, testIdx = stratifiedIndices(y, nTest, newRand(cfg.randomState))
	case cfg.shuffle:
		perm := newRand(cfg.randomState).Perm(n)
		testIdx, trainIdx = perm[:nTest], perm[nTest:]
	default:
		trainIdx, testIdx = seq(0, nTrain), seq(nTrain, n)
	}

	train, err := t.Take(trainIdx)
	if err != nil {
		return nil, err
	}
	test, err := t.Take(testIdx)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("model_selection").Debug("Split table",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, n,
		log.TrainSamplesKey, nTrain,
		log.TestSamplesKey, nTest,
		log.RandomSeedKey, cfg.randomState,
	)
	return &Split{Train: train, Test: test, Target: target}, nil
}

// newRand returns the seeded generator shared by the splitters.
func newRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s))
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// stratifiedIndices gives every class a share of the nTest held-out rows
// proportional to its size, handing leftover rows to the classes with the
// largest remainders.
func stratifiedIndices(y []float64, nTest int, r *rand.Rand) (train, test []int) {
	classes, byClass := groupByClass(y)
	n := float64(len(y))

	alloc := make([]int, len(classes))
	rem := make([]float64, len(classes))
	assigned := 0
	for k, c := range classes {
		exact := float64(nTest) * float64(len(byClass[c])) / n
		alloc[k] = int(math.Floor(exact))
		rem[k] = exact - float64(alloc[k])
		assigned += alloc[k]
	}
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return rem[order[a]] > rem[order[b]] })
	for i := 0; assigned < nTest; i = (i + 1) % len(order) {
		k := order[i]
		if alloc[k] < len(byClass[classes[k]]) {
			alloc[k]++
			assigned++
		}
	}

	for k, c := range classes {
		idx := byClass[c]
		r.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		test = append(test, idx[:alloc[k]]...)
		train = append(train, idx[alloc[k]:]...)
	}
	r.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	r.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	return train, test
}

// groupByClass returns the sorted distinct labels and the row positions of
// each.
func groupByClass(y []float64) ([]float64, map[float64][]int) {
	byClass := make(map[float64][]int)
	for i, v := range y {
		byClass[v] = append(byClass[v], i)
	}
	classes := make([]float64, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Float64s(classes)
	return classes, byClass
}
