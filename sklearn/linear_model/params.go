package linear_model

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// Parameter values arrive from Go code, YAML grids and CLI flags, so they
// are coerced with cast rather than asserted.

func setFloat(dst *float64, key string, v interface{}) error {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return errors.NewValidationError(key, "expected a number", v)
	}
	*dst = f
	return nil
}

// cast は文字列を基数 0 で読むので "010" が 8 になる。文字列は常に 10 進で読む
func parseDecimal(v interface{}, bitSize int) (int64, bool, error) {
	s, ok := v.(string)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, bitSize)
	return i, true, err
}

func setInt(dst *int, key string, v interface{}) error {
	if f, ok := v.(float64); ok && f != math.Trunc(f) {
		return errors.NewValidationError(key, "expected an integer", v)
	}
	if d, ok, err := parseDecimal(v, strconv.IntSize); ok {
		if err != nil {
			return errors.NewValidationError(key, "expected an integer", v)
		}
		*dst = int(d)
		return nil
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return errors.NewValidationError(key, "expected an integer", v)
	}
	*dst = i
	return nil
}

func setInt64(dst *int64, key string, v interface{}) error {
	if d, ok, err := parseDecimal(v, 64); ok {
		if err != nil {
			return errors.NewValidationError(key, "expected an integer", v)
		}
		*dst = d
		return nil
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return errors.NewValidationError(key, "expected an integer", v)
	}
	*dst = i
	return nil
}

func setBool(dst *bool, key string, v interface{}) error {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return errors.NewValidationError(key, "expected a boolean", v)
	}
	*dst = b
	return nil
}

func setString(dst *string, key string, v interface{}) error {
	s, err := cast.ToStringE(v)
	if err != nil {
		return errors.NewValidationError(key, "expected a string", v)
	}
	*dst = s
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.NewValidationError(key, "unsupported value", value)
}
