package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Keys the instance does not set keep their DefaultConfig values.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	// 既存のスライス要素に上書きデコードすると値の型が既定値の型に変わる
	if v.IsSet("search.grid") {
		cfg.Search.Grid = nil
	}
	if v.IsSet("data.categorical") {
		cfg.Data.Categorical = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	substituteEnvVars(cfg)
	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars expands variables in every path-like field.
func substituteEnvVars(cfg *Config) {
	cfg.Data.Path = expandEnvVar(cfg.Data.Path)
	cfg.Plot.Dir = expandEnvVar(cfg.Plot.Dir)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
// Unset variables are left as written.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}
