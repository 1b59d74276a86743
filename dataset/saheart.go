package dataset

import (
	"github.com/YuminosukeSato/logitlab/pkg/errors"
)

// Column names of the South African heart disease table.
const (
	ColSBP       = "sbp"
	ColTobacco   = "tobacco"
	ColLDL       = "ldl"
	ColAdiposity = "adiposity"
	ColFamHist   = "famhist"
	ColTypeA     = "typea"
	ColObesity   = "obesity"
	ColAlcohol   = "alcohol"
	ColAge       = "age"
	ColCHD       = "chd"
)

// SAheartTarget is the binary outcome column.
const SAheartTarget = ColCHD

// SAheartColumns lists the attribute columns in file order, target last.
var SAheartColumns = []string{
	ColSBP, ColTobacco, ColLDL, ColAdiposity, ColFamHist,
	ColTypeA, ColObesity, ColAlcohol, ColAge, ColCHD,
}

// LoadSAheart loads the SAheart CSV with famhist forced categorical and
// checks the schema.
func LoadSAheart(path string) (*Table, error) {
	t, err := LoadCSV(path, WithCategorical(ColFamHist))
	if err != nil {
		return nil, err
	}
	if err := ValidateSAheart(t); err != nil {
		return nil, err
	}
	return t, nil
}

// ValidateSAheart checks that every expected column is present with the
// right kind and that the target only holds 0 and 1.
func ValidateSAheart(t *Table) error {
	for _, name := range SAheartColumns {
		c, err := t.Column(name)
		if err != nil {
			return err
		}
		want := Numeric
		if name == ColFamHist {
			want = Categorical
		}
		if c.Kind != want {
			return errors.NewSchemaError(name, "expected "+want.String()+", got "+c.Kind.String())
		}
	}
	return CheckBinaryTarget(t, SAheartTarget)
}

// CheckBinaryTarget fails unless column holds only 0 and 1.
func CheckBinaryTarget(t *Table, column string) error {
	y, err := t.Numeric(column)
	if err != nil {
		return err
	}
	for _, v := range y {
		if v != 0 && v != 1 {
			return errors.NewSchemaError(column, "target must be 0 or 1")
		}
	}
	return nil
}
