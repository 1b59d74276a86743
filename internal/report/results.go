package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"github.com/YuminosukeSato/logitlab/dataset"
	"github.com/YuminosukeSato/logitlab/pipeline"
	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

func f4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// EvalTable shows train and test accuracy of one fitted model.
func EvalTable(title string, res pipeline.EvalResult) *Table {
	t := NewTable(title, "subset", "accuracy")
	t.AlignRight(1)
	t.AddRow("train", f4(res.TrainAccuracy))
	t.AddRow("test", f4(res.TestAccuracy))
	return t
}

// ParamsTable lists hyperparameters in the given order; keys not in order
// follow alphabetically.
func ParamsTable(title string, params map[string]interface{}, order []string) *Table {
	t := NewTable(title, "parameter", "value")
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if v, ok := params[k]; ok {
			t.AddRow(k, cast.ToString(v))
			seen[k] = true
		}
	}
	for _, k := range sortedKeys(params) {
		if !seen[k] {
			t.AddRow(k, cast.ToString(params[k]))
		}
	}
	return t
}

// CVTable shows one row per grid combination in grid order, with the best
// combination highlighted.
func CVTable(res *model_selection.CVResults, keys []string, best int) *Table {
	headers := append([]string{"rank"}, keys...)
	headers = append(headers, "mean_test", "std_test")
	withTrain := res.MeanTrainScore != nil
	if withTrain {
		headers = append(headers, "mean_train", "std_train")
	}
	headers = append(headers, "mean_fit")

	t := NewTable("Cross-validation results", headers...)
	for c := len(keys) + 1; c < len(headers); c++ {
		t.AlignRight(c)
	}
	t.AlignRight(0)
	t.Highlight = best

	for i := 0; i < res.Len(); i++ {
		row := []string{strconv.Itoa(res.RankTestScore[i])}
		for _, k := range keys {
			row = append(row, cast.ToString(res.Params[i][k]))
		}
		row = append(row, f4(res.MeanTestScore[i]), f4(res.StdTestScore[i]))
		if withTrain {
			row = append(row, f4(res.MeanTrainScore[i]), f4(res.StdTrainScore[i]))
		}
		row = append(row, res.MeanFitTime[i].Round(time.Microsecond).String())
		t.AddRow(row...)
	}
	return t
}

// SummaryTable shows Table.Describe output.
func SummaryTable(summaries []dataset.Summary) *Table {
	t := NewTable("Numeric columns", "column", "count", "mean", "std", "min", "max")
	t.AlignRight(1, 2, 3, 4, 5)
	for _, s := range summaries {
		t.AddRow(s.Name, strconv.Itoa(s.Count), f4(s.Mean), f4(s.Std), f4(s.Min), f4(s.Max))
	}
	return t
}

// DiagnosticsTable shows held-out metrics beyond accuracy.
func DiagnosticsTable(d *pipeline.Diagnostics) *Table {
	t := NewTable("Test diagnostics", "metric", "value")
	t.AlignRight(1)
	cm := d.Confusion
	t.AddRow("true negatives", strconv.Itoa(cm.TN))
	t.AddRow("false positives", strconv.Itoa(cm.FP))
	t.AddRow("false negatives", strconv.Itoa(cm.FN))
	t.AddRow("true positives", strconv.Itoa(cm.TP))
	t.AddRow("precision", f4(d.Precision))
	t.AddRow("recall", f4(d.Recall))
	t.AddRow("f1", f4(d.F1))
	if d.HasAUC {
		t.AddRow("roc auc", f4(d.AUC))
	}
	if d.HasLoss {
		t.AddRow("log loss", f4(d.LogLoss))
		t.AddRow("brier score", f4(d.Brier))
	}
	return t
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
