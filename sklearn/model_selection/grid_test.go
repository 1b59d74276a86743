package model_selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

func TestParamGrid_Combinations(t *testing.T) {
	grid := NewParamGrid().
		Add("alpha", 0.01, 0.1, 1.0).
		Add("max_iter", 1000, 10000)

	require.NoError(t, grid.Validate())
	assert.Equal(t, []string{"alpha", "max_iter"}, grid.Keys())
	assert.Equal(t, 6, grid.Size())

	combos := grid.Combinations()
	want := []Params{
		{"alpha": 0.01, "max_iter": 1000},
		{"alpha": 0.01, "max_iter": 10000},
		{"alpha": 0.1, "max_iter": 1000},
		{"alpha": 0.1, "max_iter": 10000},
		{"alpha": 1.0, "max_iter": 1000},
		{"alpha": 1.0, "max_iter": 10000},
	}
	assert.Equal(t, want, combos)
	assert.Equal(t, "alpha=0.1 max_iter=10000", combos[3].Label(grid.Keys()))
}

func TestParamGrid_AddKeepsPosition(t *testing.T) {
	grid := NewParamGrid().Add("a", 1).Add("b", 2).Add("a", 3, 4)
	assert.Equal(t, []string{"a", "b"}, grid.Keys())
	v, ok := grid.Values("a")
	require.True(t, ok)
	assert.Equal(t, []interface{}{3, 4}, v)
	_, ok = grid.Values("missing")
	assert.False(t, ok)
}

func TestParamGrid_Empty(t *testing.T) {
	grid := NewParamGrid()
	assert.Equal(t, 1, grid.Size())
	combos := grid.Combinations()
	require.Len(t, combos, 1)
	assert.Empty(t, combos[0])
}

func TestParamGrid_Validate(t *testing.T) {
	var ve *errors.ValidationError

	err := NewParamGrid().Add("alpha").Validate()
	assert.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, 0, NewParamGrid().Add("alpha").Size())
	assert.Nil(t, NewParamGrid().Add("alpha").Combinations())

	err = NewParamGrid().Add(" ", 1).Validate()
	assert.True(t, errors.As(err, &ve), "got %v", err)
}

func TestParamGridFromMap(t *testing.T) {
	raw := map[string]interface{}{
		"max_iter": []int{1000, 10000},
		"alpha":    []interface{}{0.01, 0.1, 1.0},
		"loss":     "log_loss",
	}

	grid, err := ParamGridFromMap(raw, []string{"alpha", "max_iter", "loss"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "max_iter", "loss"}, grid.Keys())
	assert.Equal(t, 6, grid.Size())

	iters, _ := grid.Values("max_iter")
	assert.Equal(t, []interface{}{1000, 10000}, iters)
	loss, _ := grid.Values("loss")
	assert.Equal(t, []interface{}{"log_loss"}, loss)

	_, err = ParamGridFromMap(raw, []string{"alpha"})
	assert.Error(t, err)
}
