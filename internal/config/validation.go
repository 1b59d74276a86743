package config

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// Hyperparameter values are checked later by the estimator itself.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if c.Data.Path == "" {
		add("data.path", "path is required")
	}
	if c.Data.Target == "" {
		add("data.target", "target is required")
	}
	if d := []rune(c.Data.Delimiter); len(d) > 1 {
		add("data.delimiter", "delimiter must be a single character")
	}

	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		add("split.test_size", "test_size must be between 0 and 1 (exclusive)")
	}
	if c.Split.Stratify && !c.Split.Shuffle {
		add("split.stratify", "stratify requires shuffle")
	}

	validModels := map[string]bool{"sgd": true, "logistic": true}
	if !validModels[strings.ToLower(c.Model.Name)] {
		add("model.name", "name must be 'sgd' or 'logistic'")
	}
	validScalers := map[string]bool{"standard": true, "minmax": true, "none": true}
	if !validScalers[c.Model.Scaler] {
		add("model.scaler", "scaler must be 'standard', 'minmax', or 'none'")
	}

	if c.Search.CV < 2 {
		add("search.cv", "cv must be at least 2")
	}
	seen := make(map[string]bool, len(c.Search.Grid))
	for i, entry := range c.Search.Grid {
		prefix := fmt.Sprintf("search.grid[%d]", i)
		if strings.TrimSpace(entry.Name) == "" {
			add(prefix+".name", "name is required")
		}
		if seen[entry.Name] {
			add(prefix+".name", fmt.Sprintf("duplicate parameter %q", entry.Name))
		}
		seen[entry.Name] = true
		if len(entry.Values) == 0 {
			add(prefix+".values", "at least one value is required")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		add("logging.level", "level must be 'debug', 'info', 'warn', or 'error'")
	}
	validFormats := map[string]bool{"json": true, "console": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		add("logging.format", "format must be 'json' or 'console'")
	}

	validPlots := map[string]bool{"png": true, "svg": true}
	if !validPlots[strings.ToLower(c.Plot.Format)] {
		add("plot.format", "format must be 'png' or 'svg'")
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		add("plot.width", "width and height must be positive")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParamGrid converts the configured grid into a model_selection.ParamGrid,
// keeping the listed order.
func (s SearchConfig) ParamGrid() (*model_selection.ParamGrid, error) {
	raw := make(map[string]interface{}, len(s.Grid))
	order := make([]string, 0, len(s.Grid))
	for _, entry := range s.Grid {
		raw[entry.Name] = entry.Values
		order = append(order, entry.Name)
	}
	return model_selection.ParamGridFromMap(raw, order)
}

// DelimiterRune returns the field separator as a rune, defaulting to a comma.
func (d DataConfig) DelimiterRune() rune {
	if r := []rune(d.Delimiter); len(r) == 1 {
		return r[0]
	}
	return ','
}
