package errors

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "logitlab: Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "logitlab: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewLoadError(t *testing.T) {
	tests := []struct {
		name    string
		line    int
		wantMsg string
	}{
		{name: "with line", line: 12, wantMsg: "logitlab: load SAheart.csv: line 12: unexpected EOF"},
		{name: "without line", line: 0, wantMsg: "logitlab: load SAheart.csv: unexpected EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLoadError("SAheart.csv", tt.line, io.ErrUnexpectedEOF)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var loadErr *LoadError
			if !As(err, &loadErr) {
				t.Fatal("Error should be castable to *LoadError")
			}
			if loadErr.Line != tt.line {
				t.Errorf("Line = %d, want %d", loadErr.Line, tt.line)
			}
			if !Is(err, io.ErrUnexpectedEOF) {
				t.Error("LoadError should unwrap to its cause")
			}
		})
	}
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("chd", "target column not found")

	want := `logitlab: schema: column "chd": target column not found`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var schemaErr *SchemaError
	if !As(err, &schemaErr) {
		t.Fatal("Error should be castable to *SchemaError")
	}
	if schemaErr.Column != "chd" {
		t.Errorf("Column = %q, want %q", schemaErr.Column, "chd")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 9, 1)

	want := "logitlab: Predict: dimension mismatch on axis 1 (features). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("SGDClassifier", "Predict")

	want := "logitlab: SGDClassifier: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("alpha", "must be positive", -0.5)

	want := "logitlab: validation failed for parameter 'alpha': must be positive (got: -0.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewConvergenceWarning(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "with message",
			message: "loss did not decrease",
			want:    "SGDClassifier failed to converge after 1000 iterations: loss did not decrease",
		},
		{
			name: "default message",
			want: "SGDClassifier failed to converge after 1000 iterations. Consider increasing max_iter or adjusting parameters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewConvergenceWarning("SGDClassifier", 1000, tt.message)
			if w.Error() != tt.want {
				t.Errorf("Error() = %v, want %v", w.Error(), tt.want)
			}
		})
	}
}

func TestWarnRouting(t *testing.T) {
	var handled, zerologged []error

	SetWarningHandler(func(w error) { handled = append(handled, w) })
	defer SetWarningHandler(nil)

	Warn(NewConvergenceWarning("SGDClassifier", 5, ""))
	if len(handled) != 1 {
		t.Fatalf("handler received %d warnings, want 1", len(handled))
	}

	SetZerologWarnFunc(func(w error) { zerologged = append(zerologged, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewConvergenceWarning("SGDClassifier", 5, ""))
	if len(zerologged) != 1 {
		t.Errorf("zerolog func received %d warnings, want 1", len(zerologged))
	}
	if len(handled) != 1 {
		t.Errorf("handler should not be called once zerolog is set, got %d", len(handled))
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "TrainTestSplit", 10, 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in TrainTestSplit: expected 10, got 0") {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}

func TestNumericalHelpers(t *testing.T) {
	if err := CheckScalar("loss", 1.5, 0); err != nil {
		t.Errorf("CheckScalar(finite) = %v", err)
	}
	var nan float64
	nan = nan / nan
	if err := CheckNumericalStability("weights", []float64{1, nan}, 3); err == nil {
		t.Error("CheckNumericalStability should flag NaN")
	}
	if got := SafeDivide(1, 0); got != 0 {
		t.Errorf("SafeDivide(1, 0) = %v, want 0", got)
	}
	if got := ClipValue(2, 0, 1); got != 1 {
		t.Errorf("ClipValue(2, 0, 1) = %v, want 1", got)
	}
	if got := Log1pExp(1000); got != 1000 {
		t.Errorf("Log1pExp(1000) = %v, want 1000", got)
	}
}
