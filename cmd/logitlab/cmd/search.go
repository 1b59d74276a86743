package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/logitlab/internal/config"
	"github.com/YuminosukeSato/logitlab/internal/report"
	"github.com/YuminosukeSato/logitlab/pipeline"
	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

var returnTrainScore bool

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Grid-search hyperparameters with cross-validation",
	Long: `Search evaluates every combination of the configured grid with stratified
k-fold cross-validation on the training subset, refits the best one and
scores it on the held-out test subset.

The best cross-validation score is optimistically biased because the same
folds pick the winner; the held-out accuracy printed last is the honest
estimate.

Example:
  logitlab search --config logitlab.yaml --n-jobs 4`,
	RunE: runWithSetup(runSearch),
}

func init() {
	searchCmd.Flags().BoolVar(&returnTrainScore, "train-score", false,
		"Also report accuracy on the fitting folds")
	rootCmd.AddCommand(searchCmd)
}

// newGridSearch builds the configured GridSearchCV and applies every grid
// combination to the estimator, so a grid the model cannot take fails
// before any data is loaded.
func newGridSearch(cfg *config.Config) (*model_selection.GridSearchCV, *model_selection.ParamGrid, error) {
	grid, err := cfg.Search.ParamGrid()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid grid: %w", err)
	}
	est, err := pipeline.NewEstimator(cfg.Model.Name, cfg.Model.Params, cfg.Model.Scaler)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build estimator: %w", err)
	}
	if err := model_selection.CheckGrid(est, grid); err != nil {
		return nil, nil, fmt.Errorf("invalid grid for model %q: %w", cfg.Model.Name, err)
	}
	gs := model_selection.NewGridSearchCV(est, grid,
		model_selection.WithCV(model_selection.NewStratifiedKFold(cfg.Search.CV, cfg.Search.Shuffle, cfg.Search.RandomState)),
		model_selection.WithNJobs(cfg.Search.NJobs),
		model_selection.WithReturnTrainScore(cfg.Search.ReturnTrainScore || returnTrainScore),
	)
	return gs, grid, nil
}

// fitGridSearch runs the search on the training views.
func fitGridSearch(cmd *cobra.Command, gs *model_selection.GridSearchCV, data *pipeline.Data) error {
	if err := gs.Fit(cmd.Context(), data.Views.XTrain, data.Views.YTrain); err != nil {
		return fmt.Errorf("grid search failed: %w", err)
	}
	return nil
}

func runSearch(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	r := renderer()

	gs, grid, err := newGridSearch(cfg)
	if err != nil {
		return err
	}
	_, data, err := prepare(cfg)
	if err != nil {
		return fmt.Errorf("failed to prepare data: %w", err)
	}
	if err := fitGridSearch(cmd, gs, data); err != nil {
		return err
	}
	trainAcc, err := pipeline.Accuracy(gs.BestEstimator_, data.Views.XTrain, data.Views.YTrain)
	if err != nil {
		return fmt.Errorf("failed to score refit model: %w", err)
	}
	testAcc, err := gs.Score(data.Views.XTest, data.Views.YTest)
	if err != nil {
		return fmt.Errorf("failed to score refit model: %w", err)
	}

	fmt.Fprintf(out, "%d combinations x %d folds on %d training rows\n\n",
		gs.CVResults_.Len(), cfg.Search.CV, data.Split.Train.Len())
	for _, t := range []*report.Table{
		report.CVTable(gs.CVResults_, grid.Keys(), gs.BestIndex_),
		report.ParamsTable("Best parameters", gs.BestParams_, grid.Keys()),
		report.EvalTable("Refit on full training subset", pipeline.EvalResult{
			TrainAccuracy: trainAcc,
			TestAccuracy:  testAcc,
		}),
	} {
		if err := r.Render(out, t); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return r.Notice(out,
		"Best mean CV accuracy %.4f is optimistically biased: the folds that chose it also scored it. Held-out test accuracy of the refit model: %.4f.",
		gs.BestScore_, testAcc)
}
