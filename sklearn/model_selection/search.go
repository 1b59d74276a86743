package model_selection

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/logitlab/core/model"
	"github.com/YuminosukeSato/logitlab/core/parallel"
	"github.com/YuminosukeSato/logitlab/metrics"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/pkg/log"
)

// DefaultCVSplits is the fold count used when no splitter is configured.
const DefaultCVSplits = 10

// CVResults is the per-combination score table of a grid search. Every
// slice is indexed by combination in grid order.
type CVResults struct {
	Params           []Params
	SplitTestScores  [][]float64
	SplitTrainScores [][]float64
	MeanTestScore    []float64
	StdTestScore     []float64
	MeanTrainScore   []float64
	StdTrainScore    []float64
	MeanFitTime      []time.Duration
	// RankTestScore is 1 for the best mean validation score; equal scores
	// share the lower rank.
	RankTestScore []int
}

// Len returns the number of combinations.
func (r *CVResults) Len() int {
	return len(r.Params)
}

// GridSearchCV exhaustively evaluates a ParamGrid with cross-validation and
// refits the best combination on all the training data.
//
// The best score is the highest mean validation accuracy over the folds.
// Because the same folds choose the winner, that score is optimistically
// biased; confirm the refit model on held-out data.
type GridSearchCV struct {
	Estimator        model.Estimator
	Grid             *ParamGrid
	CV               Splitter
	NJobs            int
	ReturnTrainScore bool

	BestParams_    Params
	BestScore_     float64
	BestIndex_     int
	BestEstimator_ model.Estimator
	CVResults_     *CVResults
	RefitTime_     time.Duration

	logger log.Logger
}

// SearchOption configures a GridSearchCV.
type SearchOption func(*GridSearchCV)

// WithCV sets the cross-validation splitter. The default is a
// StratifiedKFold with 10 splits and no shuffling.
func WithCV(cv Splitter) SearchOption {
	return func(g *GridSearchCV) {
		g.CV = cv
	}
}

// WithNJobs sets how many fits run at once. 0 and 1 run sequentially, -1
// uses every CPU core.
func WithNJobs(n int) SearchOption {
	return func(g *GridSearchCV) {
		g.NJobs = n
	}
}

// WithReturnTrainScore also records accuracy on the fitting folds.
func WithReturnTrainScore(b bool) SearchOption {
	return func(g *GridSearchCV) {
		g.ReturnTrainScore = b
	}
}

// NewGridSearchCV creates a search over grid. A nil grid searches the single
// default combination.
func NewGridSearchCV(estimator model.Estimator, grid *ParamGrid, opts ...SearchOption) *GridSearchCV {
	if grid == nil {
		grid = NewParamGrid()
	}
	g := &GridSearchCV{
		Estimator:  estimator,
		Grid:       grid,
		BestIndex_: -1,
		logger:     log.GetLoggerWithName("model_selection"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type foldData struct {
	XTrain, yTrain mat.Matrix
	XTest, yTest   mat.Matrix
}

// Fit runs the search on X, y. Cancelling ctx stops it between fits.
func (g *GridSearchCV) Fit(ctx context.Context, X, y mat.Matrix) error {
	if g.Estimator == nil {
		return errors.NewValueError("GridSearchCV.Fit", "estimator is nil")
	}
	if g.Grid == nil {
		g.Grid = NewParamGrid()
	}
	if err := g.Grid.Validate(); err != nil {
		return err
	}
	if g.logger == nil {
		g.logger = log.GetLoggerWithName("model_selection")
	}
	nSamples, nFeatures := X.Dims()
	if yRows, _ := y.Dims(); yRows != nSamples {
		return errors.NewDimensionError("GridSearchCV.Fit", nSamples, yRows, 0)
	}

	cv := g.CV
	if cv == nil {
		cv = NewStratifiedKFold(DefaultCVSplits, false, 0)
	}
	splits, err := cv.Split(X, y)
	if err != nil {
		return err
	}
	folds := make([]foldData, len(splits))
	for i, s := range splits {
		folds[i] = foldData{
			XTrain: takeRows(X, s.Train), yTrain: takeRows(y, s.Train),
			XTest: takeRows(X, s.Test), yTest: takeRows(y, s.Test),
		}
	}

	combos := g.Grid.Combinations()
	nFolds := len(folds)
	tasks := len(combos) * nFolds
	results := &CVResults{
		Params:           combos,
		SplitTestScores:  newScores(len(combos), nFolds),
		SplitTrainScores: newScores(len(combos), nFolds),
		MeanTestScore:    make([]float64, len(combos)),
		StdTestScore:     make([]float64, len(combos)),
		MeanTrainScore:   make([]float64, len(combos)),
		StdTrainScore:    make([]float64, len(combos)),
		MeanFitTime:      make([]time.Duration, len(combos)),
	}
	fitTimes := newScores(len(combos), nFolds)

	workers := 1
	if g.NJobs < 0 || g.NJobs > 1 {
		workers = parallel.Workers(g.NJobs, tasks)
	}

	g.logger.Info("Grid search started",
		log.OperationKey, log.OperationSearch,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.CandidatesKey, len(combos),
		log.FoldsKey, nFolds,
		"workers", workers,
	)
	start := time.Now()

	err = parallel.ForEach(ctx, tasks, workers, func(ctx context.Context, task int) error {
		c, f := task/nFolds, task%nFolds
		began := time.Now()
		testScore, trainScore, err := g.evaluate(combos[c], folds[f])
		if err != nil {
			return errors.Wrapf(err, "candidate %d (%s), fold %d", c, combos[c].Label(g.Grid.Keys()), f)
		}
		fitTimes[c][f] = float64(time.Since(began))
		results.SplitTestScores[c][f] = testScore
		results.SplitTrainScores[c][f] = trainScore

		g.logger.Debug("Fold evaluated",
			log.CandidateKey, c,
			log.FoldKey, f,
			log.AccuracyKey, testScore,
		)
		return nil
	})
	if err != nil {
		g.logger.Error("Grid search failed", "error", err)
		return err
	}

	for c := range combos {
		results.MeanTestScore[c], results.StdTestScore[c] = stat.PopMeanStdDev(results.SplitTestScores[c], nil)
		results.MeanFitTime[c] = time.Duration(stat.Mean(fitTimes[c], nil))
		if g.ReturnTrainScore {
			results.MeanTrainScore[c], results.StdTrainScore[c] = stat.PopMeanStdDev(results.SplitTrainScores[c], nil)
		}
	}
	if !g.ReturnTrainScore {
		results.SplitTrainScores = nil
		results.MeanTrainScore = nil
		results.StdTrainScore = nil
	}
	results.RankTestScore = rankDescending(results.MeanTestScore)

	best := 0
	for c := 1; c < len(combos); c++ {
		if results.MeanTestScore[c] > results.MeanTestScore[best] {
			best = c
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	refitStart := time.Now()
	bestEstimator, err := g.configured(combos[best])
	if err != nil {
		return err
	}
	if err := bestEstimator.Fit(X, y); err != nil {
		return errors.Wrap(err, "GridSearchCV refit")
	}

	g.CVResults_ = results
	g.BestIndex_ = best
	g.BestParams_ = combos[best]
	g.BestScore_ = results.MeanTestScore[best]
	g.BestEstimator_ = bestEstimator
	g.RefitTime_ = time.Since(refitStart)

	g.logger.Info("Grid search completed",
		log.OperationKey, log.OperationSearch,
		log.CandidatesKey, len(combos),
		log.CandidateKey, best,
		log.ParamsKey, combos[best].Label(g.Grid.Keys()),
		log.AccuracyKey, g.BestScore_,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// evaluate fits a fresh clone on one fold. A panic inside the estimator is
// returned as an error for this combination.
func (g *GridSearchCV) evaluate(params Params, fd foldData) (testScore, trainScore float64, err error) {
	err = errors.SafeExecute("GridSearchCV.evaluate", func() error {
		est, err := g.configured(params)
		if err != nil {
			return err
		}
		if err := est.Fit(fd.XTrain, fd.yTrain); err != nil {
			return err
		}
		if testScore, err = score(est, fd.XTest, fd.yTest); err != nil {
			return err
		}
		if g.ReturnTrainScore {
			trainScore, err = score(est, fd.XTrain, fd.yTrain)
		}
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return testScore, trainScore, nil
}

// CheckGrid applies every grid combination to a clone of est without
// fitting, so that a grid naming parameters est does not have fails before
// any data is touched.
func CheckGrid(est model.Estimator, grid *ParamGrid) error {
	if est == nil {
		return errors.NewValueError("CheckGrid", "estimator is nil")
	}
	if grid == nil {
		return nil
	}
	if err := grid.Validate(); err != nil {
		return err
	}
	for i, params := range grid.Combinations() {
		if err := est.Clone().SetParams(params); err != nil {
			return errors.Wrapf(err, "candidate %d (%s)", i, params.Label(grid.Keys()))
		}
	}
	return nil
}

func (g *GridSearchCV) configured(params Params) (model.Estimator, error) {
	est := g.Estimator.Clone()
	if len(params) == 0 {
		return est, nil
	}
	if err := est.SetParams(params); err != nil {
		return nil, err
	}
	return est, nil
}

func score(est model.Estimator, X, y mat.Matrix) (float64, error) {
	pred, err := est.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, pred)
}

// Predict uses the refit best estimator.
func (g *GridSearchCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	if g.BestEstimator_ == nil {
		return nil, errors.NewNotFittedError("GridSearchCV", "Predict")
	}
	return g.BestEstimator_.Predict(X)
}

// Score returns the accuracy of the refit best estimator on X, y.
func (g *GridSearchCV) Score(X, y mat.Matrix) (float64, error) {
	if g.BestEstimator_ == nil {
		return 0, errors.NewNotFittedError("GridSearchCV", "Score")
	}
	return score(g.BestEstimator_, X, y)
}

// String summarises the search setup.
func (g *GridSearchCV) String() string {
	splits := DefaultCVSplits
	if g.CV != nil {
		splits = g.CV.GetNSplits()
	}
	return fmt.Sprintf("GridSearchCV(candidates=%d, cv=%d, n_jobs=%d)", g.Grid.Size(), splits, g.NJobs)
}

func newScores(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// rankDescending ranks higher scores first; ties share the minimum rank.
func rankDescending(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	ranks := make([]int, len(scores))
	for pos, idx := range order {
		if pos > 0 && scores[idx] == scores[order[pos-1]] {
			ranks[idx] = ranks[order[pos-1]]
			continue
		}
		ranks[idx] = pos + 1
	}
	return ranks
}
