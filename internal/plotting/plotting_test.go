package plotting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

var (
	decision = []float64{-3.2, -1.5, -0.7, -0.1, 0.4, 1.1, 2.5, -2.2}
	labels   = []float64{0, 0, 0, 1, 1, 1, 1, 0}
)

func saved(t *testing.T, name string, save func(path string) error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, save(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSigmoidCurve(t *testing.T) {
	p, err := SigmoidCurve(decision, labels)
	require.NoError(t, err)
	assert.Equal(t, -0.05, p.Y.Min)
	assert.Equal(t, 1.05, p.Y.Max)
	assert.Less(t, p.X.Min, -3.2)
	assert.Greater(t, p.X.Max, 2.5)
	saved(t, "sigmoid.png", func(path string) error { return Save(p, path, 12, 8) })
}

func TestCVScores(t *testing.T) {
	res := &model_selection.CVResults{
		Params: []model_selection.Params{
			{"alpha": 0.1, "max_iter": 1000},
			{"alpha": 1.0, "max_iter": 1000},
		},
		MeanTestScore: []float64{0.71, 0.68},
		StdTestScore:  []float64{0.04, 0.06},
		MeanFitTime:   []time.Duration{time.Millisecond, time.Millisecond},
		RankTestScore: []int{1, 2},
	}
	p, err := CVScores(res, []string{"alpha", "max_iter"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Equal(t, 1.0, p.Y.Max)
	saved(t, "cv.svg", func(path string) error { return Save(p, path, 16, 10) })

	_, err = CVScores(&model_selection.CVResults{}, nil)
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestDecisionHistogram(t *testing.T) {
	p, err := DecisionHistogram(decision, labels, 4)
	require.NoError(t, err)
	saved(t, "hist.png", func(path string) error { return Save(p, path, 12, 8) })

	// 片方のクラスだけでも描ける
	_, err = DecisionHistogram([]float64{1, 2}, []float64{1, 1}, 2)
	assert.NoError(t, err)

	_, err = DecisionHistogram(decision, labels, 0)
	var verr *errors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLossCurve(t *testing.T) {
	p, err := LossCurve([]float64{0.9, 0.7, 0.62, 0.6})
	require.NoError(t, err)
	saved(t, "loss.png", func(path string) error { return Save(p, path, 10, 6) })

	_, err = LossCurve(nil)
	assert.ErrorIs(t, err, errors.ErrEmptyData)
}

func TestInputErrors(t *testing.T) {
	_, err := SigmoidCurve(nil, nil)
	assert.ErrorIs(t, err, errors.ErrEmptyData)

	_, err = SigmoidCurve([]float64{1, 2}, []float64{1})
	var derr *errors.DimensionError
	assert.ErrorAs(t, err, &derr)
}

func TestSave_RejectsFormat(t *testing.T) {
	p, err := LossCurve([]float64{1, 0.5})
	require.NoError(t, err)
	err = Save(p, filepath.Join(t.TempDir(), "loss.gif"), 10, 6)
	var verr *errors.ValidationError
	assert.ErrorAs(t, err, &verr)
}
