package linear_model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/core/model"
	"github.com/YuminosukeSato/logitlab/metrics"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/pkg/log"
)

// LogisticRegression implements binary logistic regression fitted by
// full-batch gradient descent on the mean negative log-likelihood.
// Compatible with scikit-learn's LogisticRegression parameter names.
type LogisticRegression struct {
	binaryLinear
	mu sync.RWMutex

	// Hyperparameters
	penalty      string  // Regularization: "l2" or "none"
	C            float64 // Inverse regularization strength
	fitIntercept bool    // Whether to fit intercept
	randomState  int64   // Seed for the initial weights
	maxIter      int     // Maximum iterations
	tol          float64 // Stop when every gradient component is below tol

	// NIter_ は実行された反復回数
	NIter_ int
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		binaryLinear: newBinaryLinear(),
		penalty:      PenaltyL2,
		C:            1.0,
		fitIntercept: true,
		randomState:  0,
		maxIter:      100,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRRandomState sets the seed of the initial weights
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

func (lr *LogisticRegression) validate() error {
	if err := oneOf("penalty", lr.penalty, PenaltyL2, PenaltyNone); err != nil {
		return err
	}
	if lr.C <= 0 {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}
	if lr.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", lr.maxIter)
	}
	return nil
}

// Fit trains the logistic regression model
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if err := lr.validate(); err != nil {
		return err
	}
	nSamples, nFeatures, classes, err := checkXY("LogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}
	logger := log.GetLoggerWithName("linear_model").With(log.ModelNameKey, "LogisticRegression")

	// ラベルを 0/1 に変換
	target := make([]float64, nSamples)
	for i := range target {
		if int(y.At(i, 0)) == classes[1] {
			target[i] = 1
		}
	}

	// 小さな乱数で初期化
	seed := uint64(lr.randomState)
	rng := rand.New(rand.NewPCG(seed, seed))
	weights := make([]float64, nFeatures)
	for j := range weights {
		weights[j] = rng.NormFloat64() * 0.01
	}
	intercept := 0.0

	Xd := mat.DenseCopyOf(X)
	n := float64(nSamples)
	lambda := 0.0
	if lr.penalty == PenaltyL2 {
		// sum NLL + ||w||²/(2C) を n で割った目的関数の係数
		lambda = 1.0 / (lr.C * n)
	}

	const baseLearningRate = 1.0
	gradWeights := make([]float64, nFeatures)
	converged := false
	iter := 0
	for iter < lr.maxIter {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0
		for i := 0; i < nSamples; i++ {
			xi := Xd.RawRowView(i)
			residual := sigmoid(floats.Dot(xi, weights)+intercept) - target[i]
			gradIntercept += residual
			floats.AddScaled(gradWeights, residual, xi)
		}
		floats.Scale(1/n, gradWeights)
		gradIntercept /= n
		if lambda > 0 {
			floats.AddScaled(gradWeights, lambda, weights)
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		floats.AddScaled(weights, -learningRate, gradWeights)
		if lr.fitIntercept {
			intercept -= learningRate * gradIntercept
		}
		iter++

		maxGrad := math.Max(math.Abs(gradIntercept), floats.Norm(gradWeights, math.Inf(1)))
		if err := errors.CheckScalar("LogisticRegression.Fit", maxGrad, iter); err != nil {
			return err
		}
		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", iter,
			"gradient descent reached max_iter before the gradient fell below tol"))
	}

	lr.state.Reset()
	lr.Coef_ = weights
	lr.Intercept_ = intercept
	lr.classes_ = classes
	lr.NIter_ = iter
	lr.state.SetFitted(nFeatures, nSamples)

	logger.Info("Model training completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationKey, iter,
		"converged", converged,
	)
	return nil
}

// DecisionFunction returns w·x + b for each row.
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return lr.decision("LogisticRegression", "DecisionFunction", X)
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	d, err := lr.decision("LogisticRegression", "Predict", X)
	if err != nil {
		return nil, err
	}
	return lr.labelsFromDecision(d), nil
}

// PredictProba returns probability estimates for each class
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	d, err := lr.decision("LogisticRegression", "PredictProba", X)
	if err != nil {
		return nil, err
	}
	return probaFromPositive(d, sigmoid), nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, pred)
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"random_state":  lr.randomState,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// SetParams sets the model hyperparameters. Nothing changes on error.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	next := &LogisticRegression{
		penalty:      lr.penalty,
		C:            lr.C,
		fitIntercept: lr.fitIntercept,
		randomState:  lr.randomState,
		maxIter:      lr.maxIter,
		tol:          lr.tol,
	}
	for key, value := range params {
		var err error
		switch key {
		case "penalty":
			err = setString(&next.penalty, key, value)
		case "C", "c": // viper は設定キーを小文字にする
			err = setFloat(&next.C, key, value)
		case "fit_intercept":
			err = setBool(&next.fitIntercept, key, value)
		case "random_state":
			err = setInt64(&next.randomState, key, value)
		case "max_iter":
			err = setInt(&next.maxIter, key, value)
		case "tol":
			err = setFloat(&next.tol, key, value)
		default:
			err = errors.NewValidationError(key, "unknown parameter for LogisticRegression", value)
		}
		if err != nil {
			return err
		}
	}
	if err := next.validate(); err != nil {
		return err
	}

	lr.penalty = next.penalty
	lr.C = next.C
	lr.fitIntercept = next.fitIntercept
	lr.randomState = next.randomState
	lr.maxIter = next.maxIter
	lr.tol = next.tol
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (lr *LogisticRegression) Clone() model.Estimator {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return &LogisticRegression{
		binaryLinear: newBinaryLinear(),
		penalty:      lr.penalty,
		C:            lr.C,
		fitIntercept: lr.fitIntercept,
		randomState:  lr.randomState,
		maxIter:      lr.maxIter,
		tol:          lr.tol,
	}
}

func (lr *LogisticRegression) String() string {
	return fmt.Sprintf("LogisticRegression(penalty=%s, C=%g, max_iter=%d)", lr.penalty, lr.C, lr.maxIter)
}
