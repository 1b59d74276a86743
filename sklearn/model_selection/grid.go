package model_selection

import (
	"reflect"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/spf13/cast"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// Params is one hyperparameter combination keyed by scikit-learn name.
type Params map[string]interface{}

// ParamGrid maps hyperparameter names to candidate values. Names keep their
// insertion order, which fixes the enumeration order of combinations.
type ParamGrid struct {
	m *orderedmap.OrderedMap[string, []interface{}]
}

// NewParamGrid creates an empty grid. An empty grid has exactly one
// combination: the estimator's own defaults.
func NewParamGrid() *ParamGrid {
	return &ParamGrid{m: orderedmap.NewOrderedMap[string, []interface{}]()}
}

// Add sets the candidates for name, replacing earlier ones but keeping the
// name's original position.
func (g *ParamGrid) Add(name string, values ...interface{}) *ParamGrid {
	g.m.Set(name, append([]interface{}(nil), values...))
	return g
}

// Keys returns parameter names in insertion order.
func (g *ParamGrid) Keys() []string {
	return g.m.Keys()
}

// Values returns the candidates for name.
func (g *ParamGrid) Values(name string) ([]interface{}, bool) {
	v, ok := g.m.Get(name)
	if !ok {
		return nil, false
	}
	return append([]interface{}(nil), v...), true
}

// Size is the number of combinations: the product of candidate counts.
func (g *ParamGrid) Size() int {
	size := 1
	for el := g.m.Front(); el != nil; el = el.Next() {
		size *= len(el.Value)
	}
	return size
}

// Validate rejects names without candidates.
func (g *ParamGrid) Validate() error {
	for el := g.m.Front(); el != nil; el = el.Next() {
		if strings.TrimSpace(el.Key) == "" {
			return errors.NewValidationError("param_grid", "parameter name must not be empty", el.Key)
		}
		if len(el.Value) == 0 {
			return errors.NewValidationError(el.Key, "parameter grid entry has no candidate values", el.Value)
		}
	}
	return nil
}

// Combinations enumerates the Cartesian product with the last key varying
// fastest: {a: [1, 2], b: [x, y]} gives a1 x, a1 y, a2 x, a2 y.
func (g *ParamGrid) Combinations() []Params {
	if g.Size() == 0 {
		return nil
	}
	keys := g.m.Keys()
	values := make([][]interface{}, len(keys))
	for i, k := range keys {
		values[i], _ = g.m.Get(k)
	}

	combos := make([]Params, 0, g.Size())
	counter := make([]int, len(keys))
	for {
		p := make(Params, len(keys))
		for i, k := range keys {
			p[k] = values[i][counter[i]]
		}
		combos = append(combos, p)

		i := len(keys) - 1
		for ; i >= 0; i-- {
			counter[i]++
			if counter[i] < len(values[i]) {
				break
			}
			counter[i] = 0
		}
		if i < 0 {
			return combos
		}
	}
}

// ParamGridFromMap builds a grid from decoded configuration, where maps
// lose key order. order fixes it and must list every key of raw. Scalars
// become single-candidate entries.
func ParamGridFromMap(raw map[string]interface{}, order []string) (*ParamGrid, error) {
	g := NewParamGrid()
	for _, k := range order {
		v, ok := raw[k]
		if !ok {
			continue
		}
		g.Add(k, candidates(v)...)
	}
	if len(g.Keys()) != len(raw) {
		return nil, errors.NewValidationError("param_grid", "order must list every grid key", order)
	}
	return g, g.Validate()
}

// candidates flattens any slice type into its elements.
func candidates(v interface{}) []interface{} {
	if values, err := cast.ToSliceE(v); err == nil {
		return values
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []interface{}{v}
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Label renders params in the given key order, e.g. "alpha=0.1 max_iter=1000".
func (p Params) Label(order []string) string {
	parts := make([]string, 0, len(p))
	for _, k := range order {
		if v, ok := p[k]; ok {
			parts = append(parts, k+"="+cast.ToString(v))
		}
	}
	return strings.Join(parts, " ")
}
