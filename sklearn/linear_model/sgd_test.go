package linear_model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// separable returns two well separated clusters of n points each, labelled
// neg and pos.
func separable(n int, neg, pos float64) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(2*n, 2, nil)
	y := mat.NewDense(2*n, 1, nil)
	for i := 0; i < n; i++ {
		off := float64(i%5) * 0.2
		X.SetRow(i, []float64{-2 - off, -1.5 + off/2})
		y.Set(i, 0, neg)
		X.SetRow(n+i, []float64{2 + off, 1.5 - off/2})
		y.Set(n+i, 0, pos)
	}
	return X, y
}

func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var got []error
	prev := errors.SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() { errors.SetWarningHandler(prev) })
	return &got
}

func TestSGDClassifier_FitPredict(t *testing.T) {
	X, y := separable(20, 0, 1)

	clf := NewSGDClassifier(WithRandomState(42))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	acc, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if acc != 1 {
		t.Errorf("training accuracy = %v, want 1", acc)
	}
	if clf.Coef_[0] <= 0 {
		t.Errorf("expected a positive weight on the separating feature, got %v", clf.Coef_)
	}
	if got := clf.Classes(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Classes() = %v", got)
	}
	if curve := clf.LossCurve(); len(curve) != clf.NIter_ {
		t.Errorf("LossCurve has %d entries, NIter_ = %d", len(curve), clf.NIter_)
	}
}

func TestSGDClassifier_Losses(t *testing.T) {
	X, y := separable(15, 0, 1)

	tests := []struct {
		name string
		opts []SGDOption
	}{
		{"log_loss l2", []SGDOption{WithLoss(LossLog), WithAlpha(0.01)}},
		{"hinge", []SGDOption{WithLoss(LossHinge), WithAlpha(0.01)}},
		{"perceptron", []SGDOption{WithLoss(LossPerceptron), WithAlpha(0.01), WithPenalty(PenaltyNone)}},
		{"modified_huber", []SGDOption{WithLoss(LossModifiedHuber), WithAlpha(0.01)}},
		{"squared_hinge constant", []SGDOption{
			WithLoss(LossSquaredHinge), WithLearningRate(LearningRateConstant), WithEta0(0.01),
		}},
		{"log_loss l1", []SGDOption{WithPenalty(PenaltyL1), WithAlpha(0.001)}},
		{"log_loss elasticnet", []SGDOption{WithPenalty(PenaltyElasticNet), WithAlpha(0.001)}},
		{"invscaling", []SGDOption{WithLearningRate(LearningRateInvScaling), WithEta0(0.1)}},
		{"adaptive", []SGDOption{WithLearningRate(LearningRateAdaptive), WithEta0(0.1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := NewSGDClassifier(append([]SGDOption{WithRandomState(7)}, tt.opts...)...)
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			acc, err := clf.Score(X, y)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if acc != 1 {
				t.Errorf("accuracy = %v, want 1", acc)
			}
		})
	}
}

func TestSGDClassifier_Reproducible(t *testing.T) {
	X, y := separable(10, 0, 1)

	a := NewSGDClassifier(WithRandomState(3), WithMaxIter(20), WithTol(-1))
	b := NewSGDClassifier(WithRandomState(3), WithMaxIter(20), WithTol(-1))
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	for j := range a.Coef_ {
		if a.Coef_[j] != b.Coef_[j] {
			t.Fatalf("coef differs at %d: %v vs %v", j, a.Coef_[j], b.Coef_[j])
		}
	}
	if a.Intercept_ != b.Intercept_ {
		t.Errorf("intercept differs: %v vs %v", a.Intercept_, b.Intercept_)
	}
}

func TestSGDClassifier_ConvergenceWarning(t *testing.T) {
	X, y := separable(10, 0, 1)

	t.Run("max_iter reached", func(t *testing.T) {
		warnings := captureWarnings(t)
		clf := NewSGDClassifier(WithMaxIter(1))
		if err := clf.Fit(X, y); err != nil {
			t.Fatalf("Fit must still succeed: %v", err)
		}
		if !clf.IsFitted() {
			t.Fatal("model should be usable after a convergence warning")
		}
		if len(*warnings) != 1 {
			t.Fatalf("got %d warnings, want 1", len(*warnings))
		}
		var cw *errors.ConvergenceWarning
		if !errors.As((*warnings)[0], &cw) {
			t.Fatalf("warning is %T, want ConvergenceWarning", (*warnings)[0])
		}
		if cw.Iterations != 1 {
			t.Errorf("Iterations = %d, want 1", cw.Iterations)
		}
	})

	t.Run("tol disabled", func(t *testing.T) {
		warnings := captureWarnings(t)
		clf := NewSGDClassifier(WithMaxIter(7), WithTol(-1))
		if err := clf.Fit(X, y); err != nil {
			t.Fatal(err)
		}
		if clf.NIter_ != 7 {
			t.Errorf("NIter_ = %d, want 7", clf.NIter_)
		}
		if len(*warnings) != 0 {
			t.Errorf("unexpected warnings: %v", *warnings)
		}
	})
}

func TestSGDClassifier_PredictProba(t *testing.T) {
	X, y := separable(10, 0, 1)

	clf := NewSGDClassifier(WithAlpha(0.01))
	if err := clf.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	proba, err := clf.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	d, _ := clf.DecisionFunction(X)
	rows, cols := proba.Dims()
	if cols != 2 {
		t.Fatalf("PredictProba has %d columns", cols)
	}
	for i := 0; i < rows; i++ {
		if s := proba.At(i, 0) + proba.At(i, 1); math.Abs(s-1) > 1e-12 {
			t.Errorf("row %d sums to %v", i, s)
		}
		if math.Abs(proba.At(i, 1)-Sigmoid(d.At(i, 0))) > 1e-12 {
			t.Errorf("row %d: proba is not sigmoid(decision)", i)
		}
	}

	hinged := NewSGDClassifier(WithLoss(LossHinge), WithAlpha(0.01))
	if err := hinged.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if _, err := hinged.PredictProba(X); err == nil {
		t.Error("hinge loss must not provide probabilities")
	}
}

func TestSGDClassifier_Labels(t *testing.T) {
	X, y := separable(10, 2, 5)
	clf := NewSGDClassifier(WithAlpha(0.01))
	if err := clf.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		if pred.At(i, 0) != y.At(i, 0) {
			t.Errorf("row %d: predicted %v, want %v", i, pred.At(i, 0), y.At(i, 0))
		}
	}
}

func TestSGDClassifier_Errors(t *testing.T) {
	X, y := separable(5, 0, 1)
	clf := NewSGDClassifier()

	_, err := clf.Predict(X)
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Errorf("Predict before Fit: got %v", err)
	}

	oneClass := mat.NewDense(10, 1, nil)
	if err := clf.Fit(X, oneClass); !errors.Is(err, errors.ErrNotBinary) {
		t.Errorf("single class: got %v", err)
	}

	if err := clf.Fit(X, mat.NewDense(3, 1, nil)); err == nil {
		t.Error("row mismatch should fail")
	}

	if err := clf.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	_, err = clf.Predict(mat.NewDense(2, 3, nil))
	var dim *errors.DimensionError
	if !errors.As(err, &dim) {
		t.Errorf("wrong feature count: got %v", err)
	}

	bad := []SGDOption{
		WithLoss("squared_error"),
		WithPenalty("l3"),
		WithAlpha(-1),
		WithMaxIter(0),
		WithL1Ratio(2),
		WithLearningRate("cosine"),
	}
	for _, opt := range bad {
		var ve *errors.ValidationError
		if err := NewSGDClassifier(opt).Fit(X, y); !errors.As(err, &ve) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	}
}

func TestSGDClassifier_SetParamsDecimalStrings(t *testing.T) {
	tests := []struct {
		name      string
		params    map[string]interface{}
		maxIter   int
		randState int64
	}{
		{"leading zero", map[string]interface{}{"max_iter": "010", "random_state": "010"}, 10, 10},
		{"spaces", map[string]interface{}{"max_iter": " 2000 ", "random_state": "7"}, 2000, 7},
		{"several zeros", map[string]interface{}{"max_iter": "0100", "random_state": "0042"}, 100, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clf := NewSGDClassifier()
			if err := clf.SetParams(tt.params); err != nil {
				t.Fatalf("SetParams: %v", err)
			}
			params := clf.GetParams()
			if params["max_iter"] != tt.maxIter {
				t.Errorf("max_iter = %v, want %d", params["max_iter"], tt.maxIter)
			}
			if params["random_state"] != tt.randState {
				t.Errorf("random_state = %v, want %d", params["random_state"], tt.randState)
			}
		})
	}

	for _, bad := range []string{"0x10", "1e3", ""} {
		if err := NewSGDClassifier().SetParams(map[string]interface{}{"max_iter": bad}); err == nil {
			t.Errorf("max_iter %q should fail", bad)
		}
	}
}

func TestSGDClassifier_GetSetParams(t *testing.T) {
	clf := NewSGDClassifier()

	err := clf.SetParams(map[string]interface{}{
		"alpha":    "0.5",
		"max_iter": 10000.0,
		"loss":     "hinge",
		"shuffle":  "false",
	})
	if err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	params := clf.GetParams()
	if params["alpha"] != 0.5 || params["max_iter"] != 10000 || params["loss"] != "hinge" || params["shuffle"] != false {
		t.Errorf("GetParams() = %v", params)
	}

	err = clf.SetParams(map[string]interface{}{"alpha": 0.1, "bogus": 1})
	if err == nil {
		t.Fatal("unknown key should fail")
	}
	if clf.GetParams()["alpha"] != 0.5 {
		t.Error("failed SetParams must not change anything")
	}
	if err := clf.SetParams(map[string]interface{}{"max_iter": 1.5}); err == nil {
		t.Error("fractional max_iter should fail")
	}

	if err := clf.SetParams(map[string]interface{}{"max_iter": "ten"}); err == nil {
		t.Error("non-numeric max_iter should fail")
	}

	clone := clf.Clone()
	if clone.GetParams()["alpha"] != 0.5 {
		t.Error("clone lost parameters")
	}
	if clone.(*SGDClassifier).IsFitted() {
		t.Error("clone should be unfitted")
	}
}
