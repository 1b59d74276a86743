package pipeline

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/core/model"
	"github.com/YuminosukeSato/logitlab/metrics"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/pkg/log"
	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

// EvalResult holds accuracy on the subset the model was fitted on and on
// the held-out subset.
type EvalResult struct {
	TrainAccuracy float64
	TestAccuracy  float64
}

// ModelResult is a fitted estimator with the parameters it was fitted with
// and its accuracies.
type ModelResult struct {
	Model  model.Estimator
	Params map[string]interface{}
	EvalResult
	FitTime time.Duration
}

// Evaluate fits est on the training views and scores it on both subsets.
func Evaluate(est model.Estimator, v *model_selection.Views) (EvalResult, error) {
	res, err := Train(est, v)
	if err != nil {
		return EvalResult{}, err
	}
	return res.EvalResult, nil
}

// Train is Evaluate that also keeps the fitted model.
func Train(est model.Estimator, v *model_selection.Views) (*ModelResult, error) {
	if est == nil {
		return nil, errors.NewValueError("pipeline.Train", "estimator is nil")
	}
	if v == nil {
		return nil, errors.NewValueError("pipeline.Train", "views are nil")
	}

	start := time.Now()
	if err := est.Fit(v.XTrain, v.YTrain); err != nil {
		return nil, err
	}
	fitTime := time.Since(start)

	trainAcc, err := Accuracy(est, v.XTrain, v.YTrain)
	if err != nil {
		return nil, errors.Wrap(err, "train accuracy")
	}
	testAcc, err := Accuracy(est, v.XTest, v.YTest)
	if err != nil {
		return nil, errors.Wrap(err, "test accuracy")
	}

	log.GetLoggerWithName("pipeline").Info("Model evaluated",
		log.OperationKey, log.OperationScore,
		log.TrainAccuracyKey, trainAcc,
		log.AccuracyKey, testAcc,
		log.DurationMsKey, fitTime.Milliseconds(),
	)
	return &ModelResult{
		Model:      est,
		Params:     est.GetParams(),
		EvalResult: EvalResult{TrainAccuracy: trainAcc, TestAccuracy: testAcc},
		FitTime:    fitTime,
	}, nil
}

// Accuracy predicts X with a fitted est and compares against y.
func Accuracy(est model.Estimator, X, y mat.Matrix) (float64, error) {
	pred, err := est.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, pred)
}

// Diagnostics are the held-out metrics beyond accuracy.
type Diagnostics struct {
	Confusion metrics.ConfusionMatrix
	Precision float64
	Recall    float64
	F1        float64
	// AUC and LogLoss are only set when the model exposes scores and
	// probabilities respectively.
	AUC     float64
	HasAUC  bool
	LogLoss float64
	Brier   float64
	HasLoss bool
}

// Diagnose computes Diagnostics for a fitted est on X, y.
func Diagnose(est model.Estimator, X, y mat.Matrix) (*Diagnostics, error) {
	pred, err := est.Predict(X)
	if err != nil {
		return nil, err
	}
	cm, err := metrics.NewConfusionMatrix(y, pred)
	if err != nil {
		return nil, err
	}
	p, r, f1, err := metrics.PrecisionRecallF1(y, pred)
	if err != nil {
		return nil, err
	}
	d := &Diagnostics{Confusion: cm, Precision: p, Recall: r, F1: f1}

	clf, ok := est.(model.Classifier)
	if !ok {
		return d, nil
	}
	if scores, err := clf.DecisionFunction(X); err == nil {
		if d.AUC, err = metrics.AUCMatrix(y, scores); err != nil {
			return nil, err
		}
		d.HasAUC = true
	}
	// hinge 系の損失は確率を出さない
	if proba, err := clf.PredictProba(X); err == nil {
		if d.LogLoss, err = metrics.LogLoss(y, proba); err != nil {
			return nil, err
		}
		positive := mat.Col(nil, 1, proba)
		labels := mat.Col(nil, 0, y)
		if d.Brier, err = metrics.BrierScore(mat.NewVecDense(len(labels), labels), mat.NewVecDense(len(positive), positive)); err != nil {
			return nil, err
		}
		d.HasLoss = true
	}
	return d, nil
}
