// Package config provides configuration structures and loading for logitlab.
package config

// Config represents the complete application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Split   SplitConfig   `yaml:"split" mapstructure:"split"`
	Model   ModelConfig   `yaml:"model" mapstructure:"model"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Plot    PlotConfig    `yaml:"plot" mapstructure:"plot"`
}

// DataConfig describes the input table.
type DataConfig struct {
	Path        string   `yaml:"path" mapstructure:"path"`               // .csv, optionally .gz/.zst/.lz4
	Target      string   `yaml:"target" mapstructure:"target"`           // binary 0/1 column
	Categorical []string `yaml:"categorical" mapstructure:"categorical"` // one-hot encoded before the split
	Delimiter   string   `yaml:"delimiter" mapstructure:"delimiter"`
}

// SplitConfig controls the train/test split.
type SplitConfig struct {
	TestSize    float64 `yaml:"test_size" mapstructure:"test_size"`
	RandomState int64   `yaml:"random_state" mapstructure:"random_state"`
	Shuffle     bool    `yaml:"shuffle" mapstructure:"shuffle"`
	Stratify    bool    `yaml:"stratify" mapstructure:"stratify"`
}

// ModelConfig selects the classifier and its fixed hyperparameters.
type ModelConfig struct {
	Name   string                 `yaml:"name" mapstructure:"name"`     // sgd or logistic
	Scaler string                 `yaml:"scaler" mapstructure:"scaler"` // standard, minmax or none
	Params map[string]interface{} `yaml:"params" mapstructure:"params"`
}

// GridEntry is one hyperparameter and its candidate values. The grid is a
// list so that its order survives YAML decoding.
type GridEntry struct {
	Name   string        `yaml:"name" mapstructure:"name"`
	Values []interface{} `yaml:"values" mapstructure:"values"`
}

// SearchConfig controls the cross-validated grid search.
type SearchConfig struct {
	Grid             []GridEntry `yaml:"grid" mapstructure:"grid"`
	CV               int         `yaml:"cv" mapstructure:"cv"`
	Shuffle          bool        `yaml:"shuffle" mapstructure:"shuffle"`
	RandomState      int64       `yaml:"random_state" mapstructure:"random_state"`
	NJobs            int         `yaml:"n_jobs" mapstructure:"n_jobs"`
	ReturnTrainScore bool        `yaml:"return_train_score" mapstructure:"return_train_score"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or console
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// PlotConfig controls the charts written by the plot command.
type PlotConfig struct {
	Dir    string  `yaml:"dir" mapstructure:"dir"`
	Format string  `yaml:"format" mapstructure:"format"` // png or svg
	Width  float64 `yaml:"width" mapstructure:"width"`   // centimetres
	Height float64 `yaml:"height" mapstructure:"height"` // centimetres
}

// DefaultConfig returns the settings of the SAheart walkthrough: 75/25
// split with seed 42, standardised SGD with log loss and a 3x2 grid over
// alpha and max_iter with 10-fold cross-validation.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:        "SAheart.data",
			Target:      "chd",
			Categorical: []string{"famhist"},
			Delimiter:   ",",
		},
		Split: SplitConfig{
			TestSize:    0.25,
			RandomState: 42,
			Shuffle:     true,
		},
		Model: ModelConfig{
			Name:   "sgd",
			Scaler: "standard",
			Params: map[string]interface{}{},
		},
		Search: SearchConfig{
			Grid: []GridEntry{
				{Name: "alpha", Values: []interface{}{0.01, 0.1, 1.0}},
				{Name: "max_iter", Values: []interface{}{1000, 10000}},
			},
			CV:    10,
			NJobs: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Plot: PlotConfig{
			Dir:    "plots",
			Format: "png",
			Width:  16,
			Height: 10,
		},
	}
}

// Overrides contains flag values that override config file settings. Empty
// strings and nil pointers leave the file value alone.
type Overrides struct {
	DataPath  string
	LogLevel  string
	LogFormat string
	Seed      *int64
	NJobs     *int
}

// ApplyOverrides applies CLI flag overrides. The seed drives both the
// train/test split and the estimator's random_state.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataPath != "" {
		c.Data.Path = o.DataPath
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Seed != nil {
		c.Split.RandomState = *o.Seed
		c.Search.RandomState = *o.Seed
		if c.Model.Params == nil {
			c.Model.Params = map[string]interface{}{}
		}
		c.Model.Params["random_state"] = *o.Seed
	}
	if o.NJobs != nil {
		c.Search.NJobs = *o.NJobs
	}
}
