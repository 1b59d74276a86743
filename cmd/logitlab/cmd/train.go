package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/logitlab/internal/config"
	"github.com/YuminosukeSato/logitlab/internal/report"
	"github.com/YuminosukeSato/logitlab/pipeline"
)

// overfitGap is the train minus test accuracy above which train warns.
const overfitGap = 0.05

var describe bool

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit one classifier and report its accuracy",
	Long: `Train encodes and splits the data, fits the configured classifier on the
training subset and reports accuracy on both subsets.

Steps performed:
  - Load the CSV (gzip, zstd and lz4 are decompressed by extension)
  - One-hot encode the categorical columns
  - Split into train and test subsets with the configured seed
  - Fit the model (sgd or logistic, optionally standardised)
  - Print train and test accuracy plus test-set diagnostics

Example:
  logitlab train --config logitlab.yaml --describe`,
	RunE: runWithSetup(runTrain),
}

func init() {
	trainCmd.Flags().BoolVar(&describe, "describe", false,
		"Print summary statistics of the loaded table first")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	r := renderer()

	table, data, err := prepare(cfg)
	if err != nil {
		return fmt.Errorf("failed to prepare data: %w", err)
	}
	if describe {
		if err := r.Render(out, report.SummaryTable(table.Describe())); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	est, err := pipeline.NewEstimator(cfg.Model.Name, cfg.Model.Params, cfg.Model.Scaler)
	if err != nil {
		return fmt.Errorf("failed to build estimator: %w", err)
	}
	res, err := pipeline.Train(est, data.Views)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	diag, err := pipeline.Diagnose(res.Model, data.Views.XTest, data.Views.YTest)
	if err != nil {
		return fmt.Errorf("diagnostics failed: %w", err)
	}

	fmt.Fprintf(out, "Model: %s (%d train / %d test rows, %d features)\n\n",
		res.Model, data.Split.Train.Len(), data.Split.Test.Len(), len(data.Views.FeatureNames))
	for _, t := range []*report.Table{
		report.ParamsTable("Parameters", res.Params, nil),
		report.EvalTable("Accuracy", res.EvalResult),
		report.DiagnosticsTable(diag),
	} {
		if err := r.Render(out, t); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	if gap := res.TrainAccuracy - res.TestAccuracy; gap > overfitGap {
		return r.Notice(out, "Train accuracy exceeds test accuracy by %.4f; the model may be overfitting.", gap)
	}
	return nil
}
