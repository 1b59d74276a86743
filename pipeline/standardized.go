package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/core/model"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/preprocessing"
)

// ScalerParam is the parameter name that selects the scaler kind.
const ScalerParam = "scaler"

// StandardizedClassifier scales features before handing them to Inner. The
// scaler is fit on the rows passed to Fit only, so in cross-validation each
// fold's validation rows never leak into the scaling statistics.
type StandardizedClassifier struct {
	Inner model.Estimator
	// Scaler は "standard", "minmax", "none" のいずれか
	Scaler string

	scaler_ model.Transformer
	state   *model.StateManager
}

// NewStandardizedClassifier wraps inner with the scaler named by kind.
func NewStandardizedClassifier(inner model.Estimator, kind string) *StandardizedClassifier {
	return &StandardizedClassifier{Inner: inner, Scaler: kind, state: model.NewStateManager()}
}

// Fit learns the scaling on X and fits Inner on the scaled rows.
func (s *StandardizedClassifier) Fit(X, y mat.Matrix) error {
	if s.Inner == nil {
		return errors.NewValueError("StandardizedClassifier.Fit", "inner estimator is nil")
	}
	scaler, err := preprocessing.NewScaler(s.Scaler)
	if err != nil {
		return err
	}
	Xs := X
	if scaler != nil {
		if Xs, err = scaler.FitTransform(X); err != nil {
			return err
		}
	}
	if err := s.Inner.Fit(Xs, y); err != nil {
		return err
	}

	s.state.Reset()
	s.scaler_ = scaler
	rows, cols := X.Dims()
	s.state.SetFitted(cols, rows)
	return nil
}

func (s *StandardizedClassifier) transform(method string, X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardizedClassifier", method); err != nil {
		return nil, err
	}
	if s.scaler_ == nil {
		return X, nil
	}
	return s.scaler_.Transform(X)
}

// Predict scales X and predicts with Inner.
func (s *StandardizedClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	Xs, err := s.transform("Predict", X)
	if err != nil {
		return nil, err
	}
	return s.Inner.Predict(Xs)
}

func (s *StandardizedClassifier) classifier(method string) (model.Classifier, error) {
	clf, ok := s.Inner.(model.Classifier)
	if !ok {
		return nil, errors.NewValueError("StandardizedClassifier."+method,
			fmt.Sprintf("%T does not provide %s", s.Inner, method))
	}
	return clf, nil
}

// PredictProba forwards to Inner when it is a Classifier.
func (s *StandardizedClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	clf, err := s.classifier("PredictProba")
	if err != nil {
		return nil, err
	}
	Xs, err := s.transform("PredictProba", X)
	if err != nil {
		return nil, err
	}
	return clf.PredictProba(Xs)
}

// DecisionFunction forwards to Inner when it is a Classifier.
func (s *StandardizedClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	clf, err := s.classifier("DecisionFunction")
	if err != nil {
		return nil, err
	}
	Xs, err := s.transform("DecisionFunction", X)
	if err != nil {
		return nil, err
	}
	return clf.DecisionFunction(Xs)
}

// Classes returns Inner's labels, or nil when Inner is not a Classifier.
func (s *StandardizedClassifier) Classes() []int {
	if clf, ok := s.Inner.(model.Classifier); ok {
		return clf.Classes()
	}
	return nil
}

// GetParams returns Inner's parameters plus "scaler".
func (s *StandardizedClassifier) GetParams() map[string]interface{} {
	params := map[string]interface{}{}
	if s.Inner != nil {
		params = s.Inner.GetParams()
	}
	params[ScalerParam] = s.Scaler
	return params
}

// SetParams handles "scaler" and forwards every other key to Inner. Nothing
// changes on error.
func (s *StandardizedClassifier) SetParams(params map[string]interface{}) error {
	kind := s.Scaler
	rest := make(map[string]interface{}, len(params))
	for k, v := range params {
		if k != ScalerParam {
			rest[k] = v
			continue
		}
		str, ok := v.(string)
		if !ok {
			return errors.NewValidationError(ScalerParam, "must be a string", v)
		}
		if _, err := preprocessing.NewScaler(str); err != nil {
			return err
		}
		kind = str
	}
	if len(rest) > 0 {
		if s.Inner == nil {
			return errors.NewValueError("StandardizedClassifier.SetParams", "inner estimator is nil")
		}
		if err := s.Inner.SetParams(rest); err != nil {
			return err
		}
	}
	s.Scaler = kind
	return nil
}

// Clone returns an unfitted copy wrapping a clone of Inner.
func (s *StandardizedClassifier) Clone() model.Estimator {
	var inner model.Estimator
	if s.Inner != nil {
		inner = s.Inner.Clone()
	}
	return NewStandardizedClassifier(inner, s.Scaler)
}

func (s *StandardizedClassifier) String() string {
	return fmt.Sprintf("StandardizedClassifier(scaler=%s, %v)", s.Scaler, s.Inner)
}

var _ model.Classifier = (*StandardizedClassifier)(nil)
