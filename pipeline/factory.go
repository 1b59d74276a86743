package pipeline

import (
	"sort"
	"strings"

	"github.com/YuminosukeSato/logitlab/core/model"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/sklearn/linear_model"
)

var estimators = map[string]func() model.Estimator{
	"sgd":      func() model.Estimator { return linear_model.NewSGDClassifier() },
	"logistic": func() model.Estimator { return linear_model.NewLogisticRegression() },
}

// EstimatorNames lists the names accepted by NewEstimator.
func EstimatorNames() []string {
	names := make([]string, 0, len(estimators))
	for k := range estimators {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NewEstimator builds the classifier registered under name, applies params
// and wraps it with the scaler named by scaler ("none" leaves it bare).
func NewEstimator(name string, params map[string]interface{}, scaler string) (model.Estimator, error) {
	build, ok := estimators[strings.ToLower(name)]
	if !ok {
		return nil, errors.NewValidationError("model.name",
			"must be one of "+strings.Join(EstimatorNames(), ", "), name)
	}
	est := build()
	if len(params) > 0 {
		if err := est.SetParams(params); err != nil {
			return nil, err
		}
	}
	if scaler == "none" {
		return est, nil
	}
	wrapped := NewStandardizedClassifier(est, scaler)
	// 不正な scaler 名はここで検出する
	if err := wrapped.SetParams(map[string]interface{}{ScalerParam: scaler}); err != nil {
		return nil, err
	}
	return wrapped, nil
}
