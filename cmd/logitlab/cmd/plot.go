package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"

	"github.com/YuminosukeSato/logitlab/core/model"
	"github.com/YuminosukeSato/logitlab/internal/config"
	"github.com/YuminosukeSato/logitlab/internal/plotting"
	"github.com/YuminosukeSato/logitlab/pipeline"
	"github.com/YuminosukeSato/logitlab/pkg/log"
	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

var (
	plotDir    string
	plotCV     bool
	plotFormat string
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Draw charts of a fitted classifier",
	Long: `Plot fits the configured classifier and writes charts to the plot
directory.

Charts written:
  - sigmoid: P(chd=1) against the decision value, test rows overlaid
  - decision: histogram of test decision values per class
  - loss: mean training loss per epoch (SGD only)
  - cv: mean cross-validation accuracy per grid combination (with --cv)

Example:
  logitlab plot --dir plots --format svg --cv`,
	RunE: runWithSetup(runPlot),
}

func init() {
	plotCmd.Flags().StringVar(&plotDir, "dir", "", "Override output directory")
	plotCmd.Flags().StringVar(&plotFormat, "format", "", "Override image format (png, svg)")
	plotCmd.Flags().BoolVar(&plotCV, "cv", false, "Also run the grid search and chart its scores")
	rootCmd.AddCommand(plotCmd)
}

type lossCurver interface {
	LossCurve() []float64
}

func runPlot(cmd *cobra.Command, cfg *config.Config) error {
	if plotDir != "" {
		cfg.Plot.Dir = plotDir
	}
	if plotFormat != "" {
		cfg.Plot.Format = plotFormat
	}
	if err := os.MkdirAll(cfg.Plot.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}
	logger := log.GetLoggerWithName("cmd")

	var (
		gs   *model_selection.GridSearchCV
		grid *model_selection.ParamGrid
	)
	if plotCV {
		var err error
		if gs, grid, err = newGridSearch(cfg); err != nil {
			return err
		}
	}

	_, data, err := prepare(cfg)
	if err != nil {
		return fmt.Errorf("failed to prepare data: %w", err)
	}
	est, err := pipeline.NewEstimator(cfg.Model.Name, cfg.Model.Params, cfg.Model.Scaler)
	if err != nil {
		return fmt.Errorf("failed to build estimator: %w", err)
	}
	res, err := pipeline.Train(est, data.Views)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	clf, ok := res.Model.(model.Classifier)
	if !ok {
		return fmt.Errorf("%s has no decision function", res.Model)
	}
	d, err := clf.DecisionFunction(data.Views.XTest)
	if err != nil {
		return err
	}
	decision := mat.Col(nil, 0, d)
	labels := mat.Col(nil, 0, data.Views.YTest)

	charts := map[string]func() (*plot.Plot, error){
		"sigmoid":  func() (*plot.Plot, error) { return plotting.SigmoidCurve(decision, labels) },
		"decision": func() (*plot.Plot, error) { return plotting.DecisionHistogram(decision, labels, 20) },
	}
	if lc, ok := lossSource(res.Model); ok {
		charts["loss"] = func() (*plot.Plot, error) { return plotting.LossCurve(lc.LossCurve()) }
	}
	if plotCV {
		if err := fitGridSearch(cmd, gs, data); err != nil {
			return err
		}
		charts["cv"] = func() (*plot.Plot, error) { return plotting.CVScores(gs.CVResults_, grid.Keys()) }
	}

	for _, name := range []string{"sigmoid", "decision", "loss", "cv"} {
		build, ok := charts[name]
		if !ok {
			continue
		}
		p, err := build()
		if err != nil {
			return fmt.Errorf("failed to draw %s: %w", name, err)
		}
		path := filepath.Join(cfg.Plot.Dir, name+"."+cfg.Plot.Format)
		if err := plotting.Save(p, path, cfg.Plot.Width, cfg.Plot.Height); err != nil {
			return err
		}
		logger.Info("Plot written", log.PathKey, path)
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// lossSource finds the SGD loss curve, looking through a scaling wrapper.
func lossSource(est model.Estimator) (lossCurver, bool) {
	if s, ok := est.(*pipeline.StandardizedClassifier); ok {
		est = s.Inner
	}
	lc, ok := est.(lossCurver)
	return lc, ok
}
