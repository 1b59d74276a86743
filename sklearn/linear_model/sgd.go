package linear_model

import (
	"context"
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

// Penalty names.
const (
	PenaltyL2         = "l2"
	PenaltyL1         = "l1"
	PenaltyElasticNet = "elasticnet"
	PenaltyNone       = "none"
)

// Learning rate schedules.
const (
	// LearningRateOptimal uses eta = 1 / (alpha * (t0 + t)).
	LearningRateOptimal = "optimal"
	// LearningRateConstant keeps eta = eta0.
	LearningRateConstant = "constant"
	// LearningRateInvScaling uses eta = eta0 / t^power_t.
	LearningRateInvScaling = "invscaling"
	// LearningRateAdaptive keeps eta0 and divides it by 5 each time the
	// epoch loss stops improving.
	LearningRateAdaptive = "adaptive"
)

// adaptive 学習率の下限。これを下回ると学習を打ち切る
const minAdaptiveEta = 1e-6

type sgdParams struct {
	loss          string
	penalty       string
	alpha         float64
	l1Ratio       float64
	fitIntercept  bool
	maxIter       int
	tol           float64
	shuffle       bool
	randomState   int64
	learningRate  string
	eta0          float64
	powerT        float64
	nIterNoChange int
}

func defaultSGDParams() sgdParams {
	return sgdParams{
		loss:          LossLog,
		penalty:       PenaltyL2,
		alpha:         1e-4,
		l1Ratio:       0.15,
		fitIntercept:  true,
		maxIter:       1000,
		tol:           1e-3,
		shuffle:       true,
		randomState:   0,
		learningRate:  LearningRateOptimal,
		eta0:          0.01,
		powerT:        0.5,
		nIterNoChange: 5,
	}
}

func (p sgdParams) validate() error {
	if _, err := lossByName(p.loss); err != nil {
		return err
	}
	if err := oneOf("penalty", p.penalty, PenaltyL2, PenaltyL1, PenaltyElasticNet, PenaltyNone); err != nil {
		return err
	}
	if err := oneOf("learning_rate", p.learningRate,
		LearningRateOptimal, LearningRateConstant, LearningRateInvScaling, LearningRateAdaptive); err != nil {
		return err
	}
	if p.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", p.alpha)
	}
	if p.learningRate == LearningRateOptimal && p.alpha == 0 {
		return errors.NewValidationError("alpha", "must be positive with learning_rate=optimal", p.alpha)
	}
	if p.learningRate != LearningRateOptimal && p.eta0 <= 0 {
		return errors.NewValidationError("eta0", "must be positive", p.eta0)
	}
	if p.l1Ratio < 0 || p.l1Ratio > 1 {
		return errors.NewValidationError("l1_ratio", "must be in [0, 1]", p.l1Ratio)
	}
	if p.maxIter < 1 {
		return errors.NewValidationError("max_iter", "must be at least 1", p.maxIter)
	}
	if p.nIterNoChange < 1 {
		return errors.NewValidationError("n_iter_no_change", "must be at least 1", p.nIterNoChange)
	}
	return nil
}

// penaltyWeights splits alpha between the L2 shrink and the L1 truncation.
func (p sgdParams) penaltyWeights() (l2, l1 float64) {
	switch p.penalty {
	case PenaltyL2:
		return 1, 0
	case PenaltyL1:
		return 0, 1
	case PenaltyElasticNet:
		return 1 - p.l1Ratio, p.l1Ratio
	default:
		return 0, 0
	}
}

// SGDClassifier is a linear binary classifier trained by plain stochastic
// gradient descent, one sample at a time, in the style of scikit-learn's
// SGDClassifier. With the default log_loss it is logistic regression: the
// decision value w·x + b goes through the sigmoid to give P(y = 1).
//
// Training stops when the summed epoch loss has not improved by tol*n for
// n_iter_no_change consecutive epochs. Reaching max_iter first emits a
// ConvergenceWarning through errors.Warn and still returns the model.
type SGDClassifier struct {
	binaryLinear
	mu sync.RWMutex

	params sgdParams

	// NIter_ は実行されたエポック数
	NIter_ int
	// T_ は重み更新の回数 + 1
	T_ float64

	lossCurve_ []float64
}

// SGDOption configures an SGDClassifier.
type SGDOption func(*sgdParams)

// WithLoss selects the loss: log_loss, hinge, modified_huber,
// squared_hinge or perceptron.
func WithLoss(loss string) SGDOption {
	return func(p *sgdParams) { p.loss = loss }
}

// WithPenalty selects l2, l1, elasticnet or none.
func WithPenalty(penalty string) SGDOption {
	return func(p *sgdParams) { p.penalty = penalty }
}

// WithAlpha sets the regularisation strength.
func WithAlpha(alpha float64) SGDOption {
	return func(p *sgdParams) { p.alpha = alpha }
}

// WithL1Ratio sets the elastic net mixing parameter.
func WithL1Ratio(ratio float64) SGDOption {
	return func(p *sgdParams) { p.l1Ratio = ratio }
}

// WithFitIntercept toggles the intercept.
func WithFitIntercept(fit bool) SGDOption {
	return func(p *sgdParams) { p.fitIntercept = fit }
}

// WithMaxIter caps the number of epochs.
func WithMaxIter(n int) SGDOption {
	return func(p *sgdParams) { p.maxIter = n }
}

// WithTol sets the stopping tolerance. A negative value disables the
// criterion so that exactly max_iter epochs run.
func WithTol(tol float64) SGDOption {
	return func(p *sgdParams) { p.tol = tol }
}

// WithShuffle toggles per-epoch shuffling.
func WithShuffle(shuffle bool) SGDOption {
	return func(p *sgdParams) { p.shuffle = shuffle }
}

// WithRandomState seeds the per-epoch shuffle.
func WithRandomState(seed int64) SGDOption {
	return func(p *sgdParams) { p.randomState = seed }
}

// WithLearningRate selects the step size schedule.
func WithLearningRate(schedule string) SGDOption {
	return func(p *sgdParams) { p.learningRate = schedule }
}

// WithEta0 sets the initial step size for the non-optimal schedules.
func WithEta0(eta0 float64) SGDOption {
	return func(p *sgdParams) { p.eta0 = eta0 }
}

// WithPowerT sets the invscaling exponent.
func WithPowerT(powerT float64) SGDOption {
	return func(p *sgdParams) { p.powerT = powerT }
}

// WithNIterNoChange sets the patience of the stopping criterion.
func WithNIterNoChange(n int) SGDOption {
	return func(p *sgdParams) { p.nIterNoChange = n }
}

// NewSGDClassifier creates an unfitted classifier.
//
// 使用例:
//
//	clf := linear_model.NewSGDClassifier(
//	    linear_model.WithAlpha(0.01),
//	    linear_model.WithMaxIter(1000),
//	    linear_model.WithRandomState(42),
//	)
//	err := clf.Fit(XTrain, yTrain)
//	pred, err := clf.Predict(XTest)
func NewSGDClassifier(opts ...SGDOption) *SGDClassifier {
	p := defaultSGDParams()
	for _, opt := range opts {
		opt(&p)
	}
	return &SGDClassifier{binaryLinear: newBinaryLinear(), params: p}
}

// Fit trains the classifier. y must hold exactly two integer labels; the
// larger one is the positive class.
func (s *SGDClassifier) Fit(X, y mat.Matrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.params
	if err := p.validate(); err != nil {
		return err
	}
	nSamples, nFeatures, classes, err := checkXY("SGDClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	lossFn, _ := lossByName(p.loss)

	logger := log.GetLoggerWithName("linear_model").With(log.ModelNameKey, "SGDClassifier")
	debug := logger.Enabled(context.Background(), log.LevelDebug)

	Xd := mat.DenseCopyOf(X)
	ys := make([]float64, nSamples)
	for i := range ys {
		ys[i] = -1
		if int(y.At(i, 0)) == classes[1] {
			ys[i] = 1
		}
	}

	w := make([]float64, nFeatures)
	b := 0.0
	l2Weight, l1Weight := p.penaltyWeights()

	eta := p.eta0
	var optimalInit float64
	if p.learningRate == LearningRateOptimal {
		// Bottou の初期化: 重みの典型的な大きさから t0 を決める
		typw := math.Sqrt(1.0 / math.Sqrt(p.alpha))
		initialEta0 := typw / math.Max(1.0, lossFn.dloss(-typw, 1.0))
		optimalInit = 1.0 / (initialEta0 * p.alpha)
	}

	seed := uint64(p.randomState)
	rng := rand.New(rand.NewPCG(seed, seed))
	order := make([]int, nSamples)
	for i := range order {
		order[i] = i
	}

	t := 1.0
	bestLoss := math.Inf(1)
	noImprovement := 0
	converged := false
	curve := make([]float64, 0, min(p.maxIter, 1024))
	epochs := 0

	for epoch := 0; epoch < p.maxIter; epoch++ {
		if p.shuffle {
			rng.Shuffle(nSamples, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		sumLoss := 0.0
		for _, i := range order {
			xi := Xd.RawRowView(i)
			pred := floats.Dot(xi, w) + b

			switch p.learningRate {
			case LearningRateOptimal:
				eta = 1.0 / (p.alpha * (optimalInit + t - 1))
			case LearningRateInvScaling:
				eta = p.eta0 / math.Pow(t, p.powerT)
			}

			sumLoss += lossFn.loss(pred, ys[i])
			update := -eta * lossFn.dloss(pred, ys[i])

			if l2Weight > 0 {
				floats.Scale(math.Max(0, 1-l2Weight*eta*p.alpha), w)
			}
			if update != 0 {
				floats.AddScaled(w, update, xi)
				if p.fitIntercept {
					b += update
				}
			}
			if l1Weight > 0 {
				truncate(w, l1Weight*eta*p.alpha)
			}
			t++
		}
		epochs = epoch + 1

		if err := errors.CheckScalar("SGDClassifier.Fit", sumLoss, epochs); err != nil {
			logger.Error("SGD diverged", log.EpochKey, epochs, log.LearningRateKey, eta, "error", err)
			return err
		}
		curve = append(curve, sumLoss/float64(nSamples))
		if debug {
			logger.Debug("Epoch finished",
				log.EpochKey, epochs,
				log.LossKey, sumLoss/float64(nSamples),
				log.LearningRateKey, eta,
			)
		}

		if p.tol < 0 {
			continue
		}
		if sumLoss > bestLoss-p.tol*float64(nSamples) {
			noImprovement++
		} else {
			noImprovement = 0
		}
		if sumLoss < bestLoss {
			bestLoss = sumLoss
		}
		if noImprovement >= p.nIterNoChange {
			if p.learningRate == LearningRateAdaptive && eta > minAdaptiveEta {
				eta /= 5
				noImprovement = 0
				continue
			}
			converged = true
			break
		}
	}

	if err := errors.CheckNumericalStability("SGDClassifier.Fit", w, epochs); err != nil {
		return err
	}
	if !converged && p.tol >= 0 {
		errors.Warn(errors.NewConvergenceWarning("SGDClassifier", epochs,
			"Maximum number of iteration reached before convergence. Consider increasing max_iter to improve the fit."))
	}

	s.state.Reset()
	s.Coef_ = w
	s.Intercept_ = b
	s.classes_ = classes
	s.NIter_ = epochs
	s.T_ = t
	s.lossCurve_ = curve
	s.state.SetFitted(nFeatures, nSamples)

	logger.Info("Model training completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationKey, epochs,
		log.LossKey, curve[len(curve)-1],
		log.RegularizationKey, p.alpha,
		"converged", converged,
	)
	return nil
}

// truncate pulls every weight towards zero by shrink without crossing it.
func truncate(w []float64, shrink float64) {
	for j, v := range w {
		switch {
		case v > 0:
			w[j] = math.Max(0, v-shrink)
		case v < 0:
			w[j] = math.Min(0, v+shrink)
		}
	}
}

// DecisionFunction returns w·x + b for each row (n_samples × 1).
func (s *SGDClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decision("SGDClassifier", "DecisionFunction", X)
}

// Predict returns the positive class where the decision value is above
// zero and the negative class elsewhere.
func (s *SGDClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, err := s.decision("SGDClassifier", "Predict", X)
	if err != nil {
		return nil, err
	}
	return s.labelsFromDecision(d), nil
}

// PredictProba returns [P(class0), P(class1)] per row. Only log_loss and
// modified_huber define probabilities.
func (s *SGDClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var positive func(float64) float64
	switch s.params.loss {
	case LossLog:
		positive = sigmoid
	case LossModifiedHuber:
		positive = func(d float64) float64 { return (errors.ClipValue(d, -1, 1) + 1) / 2 }
	default:
		return nil, errors.NewValueError("SGDClassifier.PredictProba",
			fmt.Sprintf("probability estimates are not available for loss=%q", s.params.loss))
	}

	d, err := s.decision("SGDClassifier", "PredictProba", X)
	if err != nil {
		return nil, err
	}
	return probaFromPositive(d, positive), nil
}

// Score returns the accuracy on X, y.
func (s *SGDClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, pred)
}

// LossCurve returns the mean training loss of every epoch.
func (s *SGDClassifier) LossCurve() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.lossCurve_...)
}

// GetParams returns the hyperparameters under their scikit-learn names.
func (s *SGDClassifier) GetParams() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.params
	return map[string]interface{}{
		"loss":             p.loss,
		"penalty":          p.penalty,
		"alpha":            p.alpha,
		"l1_ratio":         p.l1Ratio,
		"fit_intercept":    p.fitIntercept,
		"max_iter":         p.maxIter,
		"tol":              p.tol,
		"shuffle":          p.shuffle,
		"random_state":     p.randomState,
		"learning_rate":    p.learningRate,
		"eta0":             p.eta0,
		"power_t":          p.powerT,
		"n_iter_no_change": p.nIterNoChange,
	}
}

// SetParams updates hyperparameters. Either every key is applied or, on
// error, none is.
func (s *SGDClassifier) SetParams(params map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.params
	for key, value := range params {
		var err error
		switch key {
		case "loss":
			err = setString(&p.loss, key, value)
		case "penalty":
			err = setString(&p.penalty, key, value)
		case "alpha":
			err = setFloat(&p.alpha, key, value)
		case "l1_ratio":
			err = setFloat(&p.l1Ratio, key, value)
		case "fit_intercept":
			err = setBool(&p.fitIntercept, key, value)
		case "max_iter":
			err = setInt(&p.maxIter, key, value)
		case "tol":
			err = setFloat(&p.tol, key, value)
		case "shuffle":
			err = setBool(&p.shuffle, key, value)
		case "random_state":
			err = setInt64(&p.randomState, key, value)
		case "learning_rate":
			err = setString(&p.learningRate, key, value)
		case "eta0":
			err = setFloat(&p.eta0, key, value)
		case "power_t":
			err = setFloat(&p.powerT, key, value)
		case "n_iter_no_change":
			err = setInt(&p.nIterNoChange, key, value)
		default:
			err = errors.NewValidationError(key, "unknown parameter for SGDClassifier", value)
		}
		if err != nil {
			return err
		}
	}
	if err := p.validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// Clone returns an unfitted classifier with the same hyperparameters.
func (s *SGDClassifier) Clone() model.Estimator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &SGDClassifier{binaryLinear: newBinaryLinear(), params: s.params}
}

func (s *SGDClassifier) String() string {
	p := s.params
	return fmt.Sprintf("SGDClassifier(loss=%s, penalty=%s, alpha=%g, max_iter=%d, learning_rate=%s)",
		p.loss, p.penalty, p.alpha, p.maxIter, p.learningRate)
}
