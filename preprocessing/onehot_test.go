package preprocessing

import (
	"reflect"
	"testing"

	"github.com/YuminosukeSato/logitlab/dataset"
	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

func famhistTable(t *testing.T, labels []string) *dataset.Table {
	t.Helper()
	ids := make([]int, len(labels))
	age := make([]float64, len(labels))
	for i := range labels {
		ids[i] = i + 1
		age[i] = float64(30 + i)
	}
	tbl, err := dataset.NewTable(ids, []dataset.Column{
		dataset.NumericColumn("age", age),
		dataset.CategoricalColumn("famhist", labels),
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestOneHotEncode_SAheartFamhist(t *testing.T) {
	labels := []string{"Present", "Absent", "Absent", "Present", "Absent"}
	tbl := famhistTable(t, labels)

	encoded, err := OneHotEncode(tbl, "famhist")
	if err != nil {
		t.Fatalf("OneHotEncode: %v", err)
	}

	wantCols := []string{"age", "famhist_Absent", "famhist_Present"}
	if got := encoded.Columns(); !reflect.DeepEqual(got, wantCols) {
		t.Fatalf("columns = %v, want %v", got, wantCols)
	}
	if !tbl.Has("famhist") {
		t.Error("input table lost its famhist column")
	}

	absent, _ := encoded.Numeric("famhist_Absent")
	present, _ := encoded.Numeric("famhist_Present")
	for i := range labels {
		if absent[i]+present[i] != 1 {
			t.Errorf("row %d: indicators sum to %v", i, absent[i]+present[i])
		}
		if (labels[i] == "Present") != (present[i] == 1) {
			t.Errorf("row %d: label %s encoded as present=%v", i, labels[i], present[i])
		}
	}
}

func TestOneHotEncoder_DropFirst(t *testing.T) {
	tbl := famhistTable(t, []string{"Present", "Absent"})
	enc := NewOneHotEncoder("famhist", WithDropFirst())

	out, err := enc.FitTransform(tbl)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	if got := out.Columns(); !reflect.DeepEqual(got, []string{"age", "famhist_Present"}) {
		t.Errorf("columns = %v", got)
	}
}

func TestOneHotEncoder_Unknown(t *testing.T) {
	train := famhistTable(t, []string{"Present", "Absent"})
	test := famhistTable(t, []string{"Present", "Unknown"})

	tests := []struct {
		name    string
		policy  string
		wantErr bool
	}{
		{"error policy", UnknownError, true},
		{"ignore policy", UnknownIgnore, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewOneHotEncoder("famhist", WithHandleUnknown(tt.policy))
			if err := enc.Fit(train); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			out, err := enc.Transform(test)
			if tt.wantErr {
				var schemaErr *errors.SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("expected SchemaError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			absent, _ := out.Numeric("famhist_Absent")
			present, _ := out.Numeric("famhist_Present")
			if absent[1] != 0 || present[1] != 0 {
				t.Errorf("unknown label should encode as zeros, got %v %v", absent[1], present[1])
			}
		})
	}
}

func TestOneHotEncoder_SchemaErrors(t *testing.T) {
	tbl := famhistTable(t, []string{"Present"})

	tests := []struct {
		name   string
		column string
	}{
		{"missing column", "smoker"},
		{"numeric column", "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OneHotEncode(tbl, tt.column)
			var schemaErr *errors.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if schemaErr.Column != tt.column {
				t.Errorf("Column = %q, want %q", schemaErr.Column, tt.column)
			}
		})
	}

	if _, err := NewOneHotEncoder("famhist").Transform(tbl); err == nil {
		t.Error("Transform before Fit should fail")
	}
	if err := NewOneHotEncoder("famhist", WithHandleUnknown("skip")).Fit(tbl); err == nil {
		t.Error("invalid handle_unknown should fail")
	}
}
