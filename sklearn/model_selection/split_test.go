package model_selection

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/logitlab/dataset"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

func TestTrainTestSplit_Sizes(t *testing.T) {
	table := dataset.SyntheticSAheart(462, 7)

	split, err := TrainTestSplit(table, dataset.SAheartTarget, WithRandomState(42))
	require.NoError(t, err)
	assert.Equal(t, 346, split.Train.Len())
	assert.Equal(t, 116, split.Test.Len())
	assert.Equal(t, dataset.SAheartTarget, split.Target)

	// 元のテーブルは変更されない
	assert.Equal(t, 462, table.Len())
}

func TestTrainTestSplit_Partition(t *testing.T) {
	table := dataset.SyntheticSAheart(100, 3)

	split, err := TrainTestSplit(table, dataset.SAheartTarget, WithTestSize(0.3), WithRandomState(1))
	require.NoError(t, err)

	seen := make(map[int]bool)
	for _, id := range split.Train.IDs() {
		seen[id] = true
	}
	for _, id := range split.Test.IDs() {
		assert.False(t, seen[id], "id %d is on both sides", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, 30, split.Test.Len())
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	table := dataset.SyntheticSAheart(200, 3)

	a, err := TrainTestSplit(table, dataset.SAheartTarget, WithRandomState(42))
	require.NoError(t, err)
	b, err := TrainTestSplit(table, dataset.SAheartTarget, WithRandomState(42))
	require.NoError(t, err)
	c, err := TrainTestSplit(table, dataset.SAheartTarget, WithRandomState(43))
	require.NoError(t, err)

	assert.Equal(t, a.Test.IDs(), b.Test.IDs())
	assert.Equal(t, a.Train.IDs(), b.Train.IDs())
	assert.NotEqual(t, a.Test.IDs(), c.Test.IDs())
}

func TestTrainTestSplit_NoShuffle(t *testing.T) {
	table := dataset.SyntheticSAheart(20, 3)

	split, err := TrainTestSplit(table, dataset.SAheartTarget, WithShuffle(false))
	require.NoError(t, err)

	ids := table.IDs()
	assert.Equal(t, ids[:15], split.Train.IDs())
	assert.Equal(t, ids[15:], split.Test.IDs())
}

func TestTrainTestSplit_Stratified(t *testing.T) {
	table := dataset.SyntheticSAheart(462, 11)
	y, err := table.Numeric(dataset.SAheartTarget)
	require.NoError(t, err)
	positives := 0
	for _, v := range y {
		if v == 1 {
			positives++
		}
	}
	require.Greater(t, positives, 0)

	split, err := TrainTestSplit(table, dataset.SAheartTarget, WithStratify(true), WithRandomState(5))
	require.NoError(t, err)
	require.Equal(t, 116, split.Test.Len())

	testY, err := split.Test.Numeric(dataset.SAheartTarget)
	require.NoError(t, err)
	got := 0
	for _, v := range testY {
		if v == 1 {
			got++
		}
	}
	want := float64(positives) * 116 / 462
	assert.InDelta(t, want, float64(got), 1.0)

	ids := append(split.Train.IDs(), split.Test.IDs()...)
	sort.Ints(ids)
	assert.Equal(t, table.IDs(), ids)
}

func TestTrainTestSplit_Errors(t *testing.T) {
	table := dataset.SyntheticSAheart(10, 3)
	empty, err := table.Take(nil)
	require.NoError(t, err)

	t.Run("empty table", func(t *testing.T) {
		_, err := TrainTestSplit(empty, dataset.SAheartTarget)
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})
	t.Run("missing target", func(t *testing.T) {
		_, err := TrainTestSplit(table, "outcome")
		var se *errors.SchemaError
		assert.True(t, errors.As(err, &se), "got %v", err)
	})
	for _, size := range []float64{0, 1, -0.5, 1.5, 0.99} {
		_, err := TrainTestSplit(table, dataset.SAheartTarget, WithTestSize(size))
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve), "test_size=%v: got %v", size, err)
	}
	t.Run("stratify without shuffle", func(t *testing.T) {
		_, err := TrainTestSplit(table, dataset.SAheartTarget, WithShuffle(false), WithStratify(true))
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

func TestSplit_XY(t *testing.T) {
	table := dataset.SyntheticSAheart(40, 3)
	table, err := table.Drop(dataset.ColFamHist)
	require.NoError(t, err)

	split, err := TrainTestSplit(table, dataset.SAheartTarget, WithRandomState(0))
	require.NoError(t, err)
	views, err := split.XY()
	require.NoError(t, err)

	r, c := views.XTrain.Dims()
	assert.Equal(t, 30, r)
	assert.Equal(t, len(views.FeatureNames), c)
	assert.NotContains(t, views.FeatureNames, dataset.SAheartTarget)
	r, _ = views.YTest.Dims()
	assert.Equal(t, 10, r)
}
