package model_selection

import (
	"context"
	"testing"

	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/core/model"
	"github.com/YuminosukeSato/logitlab/dataset"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/preprocessing"
	"github.com/YuminosukeSato/logitlab/sklearn/linear_model"
)

// constant predicts the same label for every row. Setting "explode" makes
// Fit panic.
type constant struct {
	value   float64
	explode bool
	fits    int
}

func (c *constant) Fit(X, y mat.Matrix) error {
	if c.explode {
		panic("boom")
	}
	c.fits++
	return nil
}

func (c *constant) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, c.value)
	}
	return out, nil
}

func (c *constant) GetParams() map[string]interface{} {
	return map[string]interface{}{"value": c.value, "explode": c.explode}
}

func (c *constant) SetParams(params map[string]interface{}) error {
	for k, v := range params {
		switch k {
		case "value":
			c.value = cast.ToFloat64(v)
		case "explode":
			c.explode = cast.ToBool(v)
		default:
			return errors.NewValidationError(k, "unknown parameter", v)
		}
	}
	return nil
}

func (c *constant) Clone() model.Estimator {
	return &constant{value: c.value, explode: c.explode}
}

// imbalanced has 30 zeros followed by 10 ones.
func imbalanced() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(40, 1, nil)
	y := mat.NewDense(40, 1, nil)
	for i := 0; i < 40; i++ {
		X.Set(i, 0, float64(i))
		if i >= 30 {
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func TestGridSearchCV_RanksAndTies(t *testing.T) {
	X, y := imbalanced()
	grid := NewParamGrid().Add("value", 1.0, 0.0, 0.0)

	search := NewGridSearchCV(&constant{}, grid, WithCV(NewStratifiedKFold(4, false, 0)))
	require.NoError(t, search.Fit(context.Background(), X, y))

	res := search.CVResults_
	require.Equal(t, 3, res.Len())
	assert.InDelta(t, 0.25, res.MeanTestScore[0], 1e-12)
	assert.InDelta(t, 0.75, res.MeanTestScore[1], 1e-12)
	// フォールド精度は 0.8, 0.8, 0.7, 0.7 で母標準偏差は 0.05
	assert.InDelta(t, 0.05, res.StdTestScore[1], 1e-12)
	assert.Equal(t, []int{3, 1, 1}, res.RankTestScore)
	assert.Nil(t, res.MeanTrainScore)

	// 同点は先に現れた組み合わせが勝つ
	assert.Equal(t, 1, search.BestIndex_)
	assert.Equal(t, Params{"value": 0.0}, search.BestParams_)
	assert.InDelta(t, 0.75, search.BestScore_, 1e-12)
	require.NotNil(t, search.BestEstimator_)
	assert.Equal(t, 1, search.BestEstimator_.(*constant).fits)

	acc, err := search.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, acc, 1e-12)
}

func TestGridSearchCV_EmptyGrid(t *testing.T) {
	X, y := imbalanced()

	search := NewGridSearchCV(&constant{value: 0}, nil, WithCV(NewKFold(5, true, 1)), WithReturnTrainScore(true))
	require.NoError(t, search.Fit(context.Background(), X, y))

	assert.Equal(t, 0, search.BestIndex_)
	assert.Equal(t, 1, search.CVResults_.Len())
	assert.Len(t, search.CVResults_.SplitTestScores[0], 5)
	assert.InDelta(t, 0.75, search.CVResults_.MeanTrainScore[0], 1e-12)
}

func TestGridSearchCV_PanicBecomesError(t *testing.T) {
	X, y := imbalanced()
	grid := NewParamGrid().Add("explode", false, true)

	for _, jobs := range []int{1, 4} {
		search := NewGridSearchCV(&constant{}, grid, WithCV(NewKFold(4, false, 0)), WithNJobs(jobs))
		err := search.Fit(context.Background(), X, y)
		require.Error(t, err)
		var pe *errors.PanicError
		assert.True(t, errors.As(err, &pe), "n_jobs=%d: got %v", jobs, err)
		assert.Nil(t, search.BestEstimator_)
	}
}

func TestCheckGrid(t *testing.T) {
	sgd := linear_model.NewSGDClassifier()
	logistic := linear_model.NewLogisticRegression()
	grid := NewParamGrid().Add("alpha", 0.01, 0.1).Add("max_iter", 1000)

	require.NoError(t, CheckGrid(sgd, grid))
	require.NoError(t, CheckGrid(logistic, nil))
	require.NoError(t, CheckGrid(logistic, NewParamGrid().Add("C", 0.1, 1.0)))

	err := CheckGrid(logistic, grid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")
	assert.Contains(t, err.Error(), "candidate 0")

	err = CheckGrid(sgd, NewParamGrid().Add("alpha"))
	assert.Error(t, err)

	assert.Error(t, CheckGrid(nil, grid))
	// the estimator passed in keeps its own parameters
	assert.Equal(t, 0.0001, sgd.GetParams()["alpha"])
}

func TestGridSearchCV_Cancelled(t *testing.T) {
	X, y := imbalanced()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	search := NewGridSearchCV(&constant{}, NewParamGrid().Add("value", 0.0, 1.0))
	err := search.Fit(ctx, X, y)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGridSearchCV_InvalidParam(t *testing.T) {
	X, y := imbalanced()
	search := NewGridSearchCV(&constant{}, NewParamGrid().Add("gamma", 1.0), WithCV(NewKFold(2, false, 0)))
	var ve *errors.ValidationError
	assert.True(t, errors.As(search.Fit(context.Background(), X, y), &ve))

	_, err := search.Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
}

func saheartXY(t *testing.T, n int) (*mat.Dense, *mat.Dense) {
	t.Helper()
	table, err := preprocessing.OneHotEncode(dataset.SyntheticSAheart(n, 42), dataset.ColFamHist)
	require.NoError(t, err)
	X, y, _, err := table.XY(dataset.SAheartTarget)
	require.NoError(t, err)
	scaler := preprocessing.NewStandardScalerDefault()
	Xs, err := scaler.FitTransform(X)
	require.NoError(t, err)
	return mat.DenseCopyOf(Xs), y
}

func TestGridSearchCV_SGDClassifier(t *testing.T) {
	X, y := saheartXY(t, 346)
	grid := NewParamGrid().
		Add("alpha", 0.01, 0.1, 1.0).
		Add("max_iter", 1000, 10000)

	search := NewGridSearchCV(linear_model.NewSGDClassifier(linear_model.WithRandomState(0)), grid)
	require.NoError(t, search.Fit(context.Background(), X, y))

	res := search.CVResults_
	require.Equal(t, 6, res.Len())
	for c := 0; c < res.Len(); c++ {
		assert.Len(t, res.SplitTestScores[c], DefaultCVSplits)
		assert.GreaterOrEqual(t, res.MeanTestScore[c], 0.0)
		assert.LessOrEqual(t, res.MeanTestScore[c], 1.0)
	}

	best := 0
	for _, r := range res.RankTestScore {
		if r == 1 {
			best++
		}
	}
	assert.GreaterOrEqual(t, best, 1)
	assert.Equal(t, 1, res.RankTestScore[search.BestIndex_])
	for c := 0; c < search.BestIndex_; c++ {
		assert.Less(t, res.MeanTestScore[c], search.BestScore_)
	}
	assert.Equal(t, res.MeanTestScore[search.BestIndex_], search.BestScore_)

	params := search.BestEstimator_.GetParams()
	assert.Equal(t, search.BestParams_["alpha"], params["alpha"])
	assert.Equal(t, search.BestParams_["max_iter"], params["max_iter"])
}

func TestGridSearchCV_ParallelMatchesSequential(t *testing.T) {
	X, y := saheartXY(t, 120)
	grid := NewParamGrid().Add("alpha", 0.001, 0.1)

	run := func(jobs int) *CVResults {
		search := NewGridSearchCV(linear_model.NewSGDClassifier(), grid,
			WithCV(NewStratifiedKFold(5, true, 3)), WithNJobs(jobs))
		require.NoError(t, search.Fit(context.Background(), X, y))
		return search.CVResults_
	}
	seq := run(1)
	par := run(-1)
	assert.Equal(t, seq.SplitTestScores, par.SplitTestScores)
	assert.Equal(t, seq.RankTestScore, par.RankTestScore)
}

func TestRankDescending(t *testing.T) {
	assert.Equal(t, []int{2, 1, 4, 2}, rankDescending([]float64{0.7, 0.9, 0.1, 0.7}))
	assert.Empty(t, rankDescending(nil))
}
