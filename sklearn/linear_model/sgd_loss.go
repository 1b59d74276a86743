package linear_model

import (
	"math"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// lossFunction is a per-sample loss of the decision value p against a
// label y in {-1, +1}. dloss is its derivative with respect to p.
type lossFunction interface {
	loss(p, y float64) float64
	dloss(p, y float64) float64
}

// logLoss is the negative log-likelihood of the logistic model.
type logLoss struct{}

func (logLoss) loss(p, y float64) float64 {
	return errors.Log1pExp(-y * p)
}

func (logLoss) dloss(p, y float64) float64 {
	z := y * p
	switch {
	case z > 18:
		return -y * math.Exp(-z)
	case z < -18:
		return -y
	default:
		return -y / (math.Exp(z) + 1)
	}
}

// hinge is max(0, threshold - y·p). threshold 1 is the SVM hinge, 0 is the
// perceptron criterion.
type hinge struct {
	threshold float64
}

func (h hinge) loss(p, y float64) float64 {
	if z := y * p; z <= h.threshold {
		return h.threshold - z
	}
	return 0
}

func (h hinge) dloss(p, y float64) float64 {
	if y*p <= h.threshold {
		return -y
	}
	return 0
}

type squaredHinge struct{}

func (squaredHinge) loss(p, y float64) float64 {
	if z := 1 - y*p; z > 0 {
		return z * z
	}
	return 0
}

func (squaredHinge) dloss(p, y float64) float64 {
	if z := 1 - y*p; z > 0 {
		return -2 * y * z
	}
	return 0
}

// modifiedHuber is a smoothed hinge that is quadratic near the margin and
// linear far on the wrong side.
type modifiedHuber struct{}

func (modifiedHuber) loss(p, y float64) float64 {
	z := y * p
	switch {
	case z >= 1:
		return 0
	case z >= -1:
		return (1 - z) * (1 - z)
	default:
		return -4 * z
	}
}

func (modifiedHuber) dloss(p, y float64) float64 {
	z := y * p
	switch {
	case z >= 1:
		return 0
	case z >= -1:
		return -2 * (1 - z) * y
	default:
		return -4 * y
	}
}

// Loss names accepted by SGDClassifier.
const (
	LossLog           = "log_loss"
	LossHinge         = "hinge"
	LossModifiedHuber = "modified_huber"
	LossSquaredHinge  = "squared_hinge"
	LossPerceptron    = "perceptron"
)

func lossByName(name string) (lossFunction, error) {
	switch name {
	case LossLog:
		return logLoss{}, nil
	case LossHinge:
		return hinge{threshold: 1}, nil
	case LossPerceptron:
		return hinge{threshold: 0}, nil
	case LossSquaredHinge:
		return squaredHinge{}, nil
	case LossModifiedHuber:
		return modifiedHuber{}, nil
	default:
		return nil, errors.NewValidationError("loss", "unsupported loss function", name)
	}
}
