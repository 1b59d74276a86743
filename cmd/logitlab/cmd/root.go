package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/logitlab/dataset"
	"github.com/YuminosukeSato/logitlab/internal/config"
	"github.com/YuminosukeSato/logitlab/internal/report"
	"github.com/YuminosukeSato/logitlab/pipeline"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/pkg/log"
	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	dataPath  string
	logLevel  string
	logFormat string
	seed      int64
	nJobs     int
	synthetic int
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:   "logitlab",
	Short: "Logistic regression walkthrough on the SAheart data",
	Long: `logitlab fits binary logistic classifiers to the South African heart
disease table and explains what it did.

Workflow:
  - One-hot encode categorical columns (famhist)
  - Seeded train/test split (75/25 by default)
  - Standardise features and fit SGDClassifier or LogisticRegression
  - Report train and test accuracy
  - Grid-search hyperparameters with stratified k-fold cross-validation
  - Plot the sigmoid link, decision values and CV scores`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command. Ctrl-C cancels a running grid search.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to configuration file (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "",
		"Override data path (.csv, .csv.gz, .csv.zst, .csv.lz4)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, console)")

	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42,
		"Override random seed for the split, the folds and SGD")
	rootCmd.PersistentFlags().IntVar(&nJobs, "n-jobs", 1,
		"Override number of concurrent grid-search fits (-1 for all cores)")

	rootCmd.PersistentFlags().IntVar(&synthetic, "synthetic", 0,
		"Use N generated SAheart-like rows instead of reading data")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable coloured output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the flags the user actually set.
func GetCLIOverrides() config.Overrides {
	o := config.Overrides{
		DataPath:  dataPath,
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}
	flags := rootCmd.PersistentFlags()
	if flags.Changed("seed") {
		s := seed
		o.Seed = &s
	}
	if flags.Changed("n-jobs") {
		n := nJobs
		o.NJobs = &n
	}
	return o
}

// loadConfig reads the config file (or the defaults), applies flag
// overrides and validates the result.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := GetConfigFile(); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.ApplyOverrides(GetCLIOverrides())
	if synthetic > 0 {
		cfg.Data.Path = fmt.Sprintf("synthetic:%d", synthetic)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the process-wide logger. The returned closer must be
// called when the log goes to a file.
func setupLogging(cmd *cobra.Command, cfg *config.Config) (io.Closer, error) {
	var (
		w      io.Writer
		closer io.Closer = io.NopCloser(nil)
	)
	switch cfg.Logging.Output {
	case "", "stderr":
		w = cmd.ErrOrStderr()
	case "stdout":
		w = cmd.OutOrStdout()
	default:
		f, err := os.OpenFile(cfg.Logging.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	}
	if err := log.SetupLogger(cfg.Logging.Level, cfg.Logging.Format, w); err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return closer, nil
}

// loadTable reads the configured table, or generates one for --synthetic.
func loadTable(cfg *config.Config) (*dataset.Table, error) {
	if synthetic > 0 {
		return dataset.SyntheticSAheart(synthetic, uint64(cfg.Split.RandomState)), nil
	}
	t, err := dataset.LoadCSV(cfg.Data.Path,
		dataset.WithDelimiter(cfg.Data.DelimiterRune()),
		dataset.WithCategorical(cfg.Data.Categorical...),
	)
	if err != nil {
		return nil, err
	}
	if isSAheart(t) {
		if err := dataset.ValidateSAheart(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func isSAheart(t *dataset.Table) bool {
	for _, c := range dataset.SAheartColumns {
		if !t.Has(c) {
			return false
		}
	}
	return true
}

// prepare loads, encodes and splits the data as configured.
func prepare(cfg *config.Config) (*dataset.Table, *pipeline.Data, error) {
	t, err := loadTable(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.GetLoggerWithName("cmd").Info("Data loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, cfg.Data.Path,
		log.SamplesKey, t.Len(),
	)
	data, err := pipeline.Prepare(t, cfg.Data.Target, cfg.Data.Categorical,
		model_selection.WithTestSize(cfg.Split.TestSize),
		model_selection.WithRandomState(cfg.Split.RandomState),
		model_selection.WithShuffle(cfg.Split.Shuffle),
		model_selection.WithStratify(cfg.Split.Stratify),
	)
	if err != nil {
		return nil, nil, err
	}
	return t, data, nil
}

// runWithSetup wraps a subcommand body with config loading and logging.
func runWithSetup(body func(cmd *cobra.Command, cfg *config.Config) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		closer, err := setupLogging(cmd, cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		return errors.SafeExecute(cmd.Name(), func() error {
			return body(cmd, cfg)
		})
	}
}

func renderer() *report.Renderer {
	return report.NewRenderer(!noColor)
}
