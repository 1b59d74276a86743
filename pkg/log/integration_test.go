package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

func TestTestLoggerLevels(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	testLogger.Debug("this should not appear")
	testLogger.Info("info message", "operation", "test")
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", "error", fmt.Errorf("boom"))

	if buffer.Len() == 0 {
		t.Fatal("Expected log output, got empty string")
	}
	if testLogger.ContainsMessage("this should not appear") {
		t.Error("Debug message should not appear when level is Info")
	}
	for _, msg := range []string{"info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
	if !testLogger.ContainsField("error", "boom") {
		t.Error("error field should be stringified")
	}
	if !testLogger.Enabled(context.Background(), LevelError) {
		t.Error("Logger should be enabled for Error level")
	}
	if testLogger.Enabled(context.Background(), LevelDebug) {
		t.Error("Logger should not be enabled for Debug level")
	}
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "SGDClassifier",
		ComponentKey, "linear_model",
	)
	contextLogger.Info("fit finished", OperationKey, OperationFit, SamplesKey, 346)

	if !testLogger.ContainsField(ModelNameKey, "SGDClassifier") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(SamplesKey, 346.0) {
		t.Error("Samples field not found")
	}
	if got := testLogger.CountMessages("fit finished"); got != 1 {
		t.Errorf("CountMessages = %d, want 1", got)
	}
}

func TestTestLoggerProvider(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("model_selection").Info("named logger message")

	out := buffer.String()
	for _, want := range []string{"provider test message", "named logger message", "model_selection"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	provider.SetLevel(LevelError)
	provider.GetLogger().Info("suppressed")
	if provider.Logger().ContainsMessage("suppressed") {
		t.Error("SetLevel should apply to loggers already handed out")
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.Debug("hidden")
	logger.With(ModelNameKey, "LogisticRegression").Info("fit finished",
		OperationKey, OperationFit,
		AccuracyKey, 0.75,
	)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry[ModelNameKey] != "LogisticRegression" {
		t.Errorf("%s = %v", ModelNameKey, entry[ModelNameKey])
	}
	if entry[AccuracyKey] != 0.75 {
		t.Errorf("%s = %v", AccuracyKey, entry[AccuracyKey])
	}
	if entry["message"] != "fit finished" {
		t.Errorf("message = %v", entry["message"])
	}
	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled")
	}
}

func TestZerologLoggerErrorObject(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	schemaErr := &errors.SchemaError{Column: "chd", Reason: "missing"}
	logger.Warn("bad schema", "schema", zerolog.LogObjectMarshaler(schemaErr))

	if !strings.Contains(buf.String(), `"column":"chd"`) {
		t.Errorf("expected structured object, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetupLoggerRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	prev := SetProvider(NewZerologProvider(zerolog.Nop(), LevelInfo))
	defer SetProvider(prev)
	defer errors.SetZerologWarnFunc(nil)

	if err := SetupLogger("info", "json", &buf); err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}

	errors.Warn(errors.NewConvergenceWarning("SGDClassifier", 5, "max_iter reached"))

	out := buf.String()
	if !strings.Contains(out, `"type":"ConvergenceWarning"`) {
		t.Errorf("warning not routed to zerolog: %s", out)
	}
	if !strings.Contains(out, `"iterations":5`) {
		t.Errorf("iterations missing: %s", out)
	}

	if err := SetupLogger("info", "xml", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	const goroutines, perGoroutine = 4, 5
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				testLogger.Info("fold scored", FoldKey, j, "worker", id)
			}
		}(i)
	}
	wg.Wait()

	if got := testLogger.CountMessages("fold scored"); got != goroutines*perGoroutine {
		t.Errorf("got %d entries, want %d", got, goroutines*perGoroutine)
	}
}

func BenchmarkZerologLogger(b *testing.B) {
	logger := NewZerologLogger(zerolog.Nop())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", IterationKey, i, OperationKey, OperationPredict)
	}
}
