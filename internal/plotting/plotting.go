// Package plotting draws the charts of the logistic-regression walkthrough
// with gonum/plot: the sigmoid link over fitted decision values, the
// cross-validation score per grid combination, the per-class distribution
// of decision values and the SGD loss curve.
package plotting

import (
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/logitlab/pkg/errors"
	"github.com/YuminosukeSato/logitlab/sklearn/linear_model"
	"github.com/YuminosukeSato/logitlab/sklearn/model_selection"
)

var (
	negativeColor = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	positiveColor = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	curveColor    = color.RGBA{A: 255}
)

// SigmoidCurve plots P(y=1) = sigmoid(d) over the range of the decision
// values, with each sample drawn at (d, label).
func SigmoidCurve(decision, labels []float64) (*plot.Plot, error) {
	if len(decision) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "SigmoidCurve")
	}
	if len(decision) != len(labels) {
		return nil, errors.NewDimensionError("SigmoidCurve", len(decision), len(labels), 0)
	}

	p := plot.New()
	p.Title.Text = "Sigmoid link"
	p.X.Label.Text = "decision value w·x + b"
	p.Y.Label.Text = "P(chd = 1)"

	lo, hi := floats.Min(decision), floats.Max(decision)
	span := math.Max(hi-lo, 1)
	fn := plotter.NewFunction(linear_model.Sigmoid)
	fn.XMin, fn.XMax = lo-0.1*span, hi+0.1*span
	fn.Samples = 200
	fn.Color = curveColor
	fn.Width = vg.Points(2)
	p.Add(fn)
	p.Legend.Add("sigmoid", fn)

	for class, c := range []color.Color{negativeColor, positiveColor} {
		class := float64(class)
		var pts plotter.XYs
		for i, d := range decision {
			if labels[i] == class {
				pts = append(pts, plotter.XY{X: d, Y: class})
			}
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.Color = c
		p.Add(s)
	}
	p.X.Min, p.X.Max = fn.XMin, fn.XMax
	p.Y.Min, p.Y.Max = -0.05, 1.05
	return p, nil
}

// errorPoints feeds a plotter.YErrorBars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// CVScores plots the mean validation accuracy of each grid combination as
// a bar with ± one standard deviation, labelled by its parameters.
func CVScores(res *model_selection.CVResults, keys []string) (*plot.Plot, error) {
	if res == nil || res.Len() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "CVScores")
	}

	p := plot.New()
	p.Title.Text = "Cross-validated accuracy"
	p.Y.Label.Text = "mean validation accuracy"

	values := make(plotter.Values, res.Len())
	copy(values, res.MeanTestScore)
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = negativeColor
	p.Add(bars)

	ep := errorPoints{XYs: make(plotter.XYs, res.Len()), YErrors: make(plotter.YErrors, res.Len())}
	labels := make([]string, res.Len())
	for i := range labels {
		ep.XYs[i] = plotter.XY{X: float64(i), Y: res.MeanTestScore[i]}
		ep.YErrors[i].Low = res.StdTestScore[i]
		ep.YErrors[i].High = res.StdTestScore[i]
		labels[i] = strings.ReplaceAll(res.Params[i].Label(keys), " ", "\n")
	}
	eb, err := plotter.NewYErrorBars(ep)
	if err != nil {
		return nil, err
	}
	p.Add(eb)
	p.NominalX(labels...)
	p.Y.Min, p.Y.Max = 0, 1
	return p, nil
}

// DecisionHistogram plots the distribution of decision values for each
// class. Overlap around zero is where the classifier errs.
func DecisionHistogram(decision, labels []float64, bins int) (*plot.Plot, error) {
	if len(decision) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "DecisionHistogram")
	}
	if len(decision) != len(labels) {
		return nil, errors.NewDimensionError("DecisionHistogram", len(decision), len(labels), 0)
	}
	if bins < 1 {
		return nil, errors.NewValidationError("bins", "must be positive", bins)
	}

	p := plot.New()
	p.Title.Text = "Decision values by class"
	p.X.Label.Text = "decision value"
	p.Y.Label.Text = "density"

	for _, class := range []float64{0, 1} {
		var vs plotter.Values
		for i, d := range decision {
			if labels[i] == class {
				vs = append(vs, d)
			}
		}
		if len(vs) == 0 {
			continue
		}
		h, err := plotter.NewHist(vs, bins)
		if err != nil {
			return nil, err
		}
		h.Normalize(1)
		c := negativeColor
		name := "chd = 0"
		if class == 1 {
			c, name = positiveColor, "chd = 1"
		}
		h.FillColor = color.RGBA{R: c.R, G: c.G, B: c.B, A: 110}
		h.LineStyle.Color = c
		p.Add(h)
		p.Legend.Add(name, h)
	}
	return p, nil
}

// LossCurve plots the average training loss per epoch.
func LossCurve(curve []float64) (*plot.Plot, error) {
	if len(curve) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "LossCurve")
	}
	p := plot.New()
	p.Title.Text = "Training loss"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "mean loss"

	pts := make(plotter.XYs, len(curve))
	for i, v := range curve {
		pts[i] = plotter.XY{X: float64(i + 1), Y: v}
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = positiveColor
	l.Width = vg.Points(1.5)
	p.Add(l)
	return p, nil
}

// Save writes p to path; the extension (.png or .svg) picks the format.
// width and height are in centimetres.
func Save(p *plot.Plot, path string, width, height float64) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg":
	default:
		return errors.NewValidationError("plot.format", "file must end in .png or .svg", path)
	}
	if err := p.Save(vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
