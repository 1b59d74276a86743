// Package logitlab is a small scikit-learn-shaped machine learning library
// for Go that walks through binary logistic regression on the South African
// heart disease (SAheart) data.
//
// logitlab keeps scikit-learn's names and defaults so that a notebook
// written in Python reads the same in Go: estimators take functional
// options, expose GetParams/SetParams, and store fitted state in fields with
// a trailing underscore.
//
// # Features
//
// - Tables: CSV loading with transparent gzip, zstd and lz4 decompression
// - Preprocessing: one-hot encoding, standard and min-max scaling
// - Models: SGDClassifier (log loss and friends) and LogisticRegression
// - Model selection: seeded train/test split, KFold, StratifiedKFold, GridSearchCV
// - Robust Error Handling: typed errors with stack traces, convergence warnings
// - Structured Logging: zerolog behind an slog-compatible interface
//
// # Installation
//
//	go get github.com/YuminosukeSato/logitlab
//
// # Quick Start
//
// Split the data, fit a standardised SGD classifier and read its accuracy:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/logitlab/dataset"
//	    "github.com/YuminosukeSato/logitlab/pipeline"
//	    "github.com/YuminosukeSato/logitlab/sklearn/linear_model"
//	    "github.com/YuminosukeSato/logitlab/sklearn/model_selection"
//	)
//
//	func main() {
//	    table, err := dataset.LoadSAheart("SAheart.data")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    data, err := pipeline.Prepare(table, "chd", []string{"famhist"},
//	        model_selection.WithRandomState(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    model := pipeline.NewStandardizedClassifier(
//	        linear_model.NewSGDClassifier(linear_model.WithRandomState(42)), "standard")
//	    res, err := pipeline.Train(model, data.Views)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("train %.4f  test %.4f\n", res.TrainAccuracy, res.TestAccuracy)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - dataset: Tables, CSV loading, the SAheart schema and a generator
//   - preprocessing: OneHotEncode, StandardScaler, MinMaxScaler
//   - sklearn/linear_model: SGDClassifier, LogisticRegression
//   - sklearn/model_selection: TrainTestSplit, KFold, StratifiedKFold, GridSearchCV
//   - metrics: accuracy, log loss, confusion matrix, precision/recall/F1, ROC AUC
//   - pipeline: encode-split-fit-evaluate helpers
//   - core/model: Core interfaces and base types
//   - core/parallel: Bounded parallel execution
//   - pkg/errors, pkg/log: Error types and structured logging
//
// The logitlab command (cmd/logitlab) drives the same steps from a YAML
// config: train, search, plot and version.
//
// # License
//
// logitlab is released under the MIT License.
package logitlab
