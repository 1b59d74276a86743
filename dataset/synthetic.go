package dataset

import (
	"math"
	"math/rand/v2"
)

// SyntheticSAheart generates n rows with the SAheart schema. Risk grows with
// age, tobacco, ldl and a family history, so a linear classifier does
// noticeably better than chance on it. The same seed gives the same table.
func SyntheticSAheart(n int, seed uint64) *Table {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	ids := make([]int, n)
	cols := map[string][]float64{}
	for _, c := range SAheartColumns {
		if c != ColFamHist {
			cols[c] = make([]float64, n)
		}
	}
	famhist := make([]string, n)

	for i := 0; i < n; i++ {
		ids[i] = i + 1
		age := 15 + math.Floor(rng.Float64()*50)
		tobacco := math.Max(0, rng.ExpFloat64()*3.6)
		ldl := math.Max(1, 4.7+rng.NormFloat64()*2)
		adiposity := 25 + rng.NormFloat64()*7.8
		obesity := 26 + rng.NormFloat64()*4.2
		present := rng.Float64() < 0.42
		if present {
			famhist[i] = "Present"
		} else {
			famhist[i] = "Absent"
		}

		z := -4.6 + 0.045*age + 0.08*tobacco + 0.18*ldl + 0.006*obesity
		if present {
			z += 0.93
		}
		chd := 0.0
		if rng.Float64() < 1/(1+math.Exp(-z)) {
			chd = 1
		}

		cols[ColSBP][i] = math.Round(138 + rng.NormFloat64()*20)
		cols[ColTobacco][i] = round2(tobacco)
		cols[ColLDL][i] = round2(ldl)
		cols[ColAdiposity][i] = round2(adiposity)
		cols[ColTypeA][i] = math.Round(53 + rng.NormFloat64()*9.8)
		cols[ColObesity][i] = round2(obesity)
		cols[ColAlcohol][i] = round2(math.Max(0, rng.ExpFloat64()*17))
		cols[ColAge][i] = age
		cols[ColCHD][i] = chd
	}

	columns := make([]Column, 0, len(SAheartColumns))
	for _, c := range SAheartColumns {
		if c == ColFamHist {
			columns = append(columns, CategoricalColumn(c, famhist))
			continue
		}
		columns = append(columns, NumericColumn(c, cols[c]))
	}
	t, err := NewTable(ids, columns)
	if err != nil {
		panic(err)
	}
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
