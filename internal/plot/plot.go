// Package plot renders I-V scatter plots with optional fit lines as
// PNG images.
package plot

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"ivcli/internal/analysis"
)

// fitLineSamples is the number of points the fit line is sampled at
// across the observed voltage range.
const fitLineSamples = 100

// Renderer renders analysis plots with a fixed geometry
type Renderer struct {
	width  int
	height int
	dpi    float64
}

// NewRenderer creates a renderer with the given image geometry
func NewRenderer(width, height, dpi int) *Renderer {
	return &Renderer{width: width, height: height, dpi: float64(dpi)}
}

func dataStyle() chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    3,
		DotColor:    chart.ColorBlack,
	}
}

func fitStyle() chart.Style {
	return chart.Style{
		StrokeWidth:     2.0,
		StrokeColor:     chart.ColorRed,
		StrokeDashArray: []float64{5.0, 5.0},
	}
}

// RenderGroup writes the scatter + fit-line plot for one temperature
// group. x is voltage; y is the fitted quantity, current density in
// linear mode or ln(current) in log-linear mode.
func (r *Renderer) RenderGroup(w io.Writer, fit analysis.FitResult, mode analysis.Mode, x, y []float64) error {
	series := []chart.Series{
		chart.ContinuousSeries{Name: "Data", XValues: x, YValues: y, Style: dataStyle()},
	}

	fx, fy := sampleLine(x, func(v float64) float64 {
		return fit.Slope*v + fit.Intercept
	})
	if len(fx) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("Linear fit (R² = %.3f)", fit.RSquared),
			XValues: fx,
			YValues: fy,
			Style:   fitStyle(),
		})
	}

	yLabel := "Current Density (mA/m²)"
	if mode == analysis.ModeLogLinear {
		yLabel = "ln Current (mA)"
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("I-V Characteristics at %.0f K", fit.Temperature),
		Width:  r.width,
		Height: r.height,
		DPI:    r.dpi,
		XAxis:  chart.XAxis{Name: "Voltage (V)"},
		YAxis:  chart.YAxis{Name: yLabel},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// RenderSweep writes a whole-sweep scatter plot. When fit is non-nil
// the fitted model is drawn across the voltage range; for log-linear
// fits that is the exponential I0·exp(slope·V). logY selects a
// logarithmic Y axis, which restricts the plot to strictly positive
// currents.
func (r *Renderer) RenderSweep(w io.Writer, fit *analysis.FitResult, mode analysis.Mode, x, y []float64, logY bool) error {
	px, py := x, y
	if logY {
		px, py = positivePairs(x, y)
		if len(px) == 0 {
			return fmt.Errorf("no positive currents to plot on a log axis")
		}
	}

	series := []chart.Series{
		chart.ContinuousSeries{Name: "Data", XValues: px, YValues: py, Style: dataStyle()},
	}

	if fit != nil {
		model := func(v float64) float64 { return fit.Slope*v + fit.Intercept }
		name := fmt.Sprintf("Linear fit (R² = %.3f)", fit.RSquared)
		if mode == analysis.ModeLogLinear {
			model = func(v float64) float64 { return fit.SaturationCurrent * math.Exp(fit.Slope*v) }
			name = fmt.Sprintf("I = %.1e×exp(%.2fV)", fit.SaturationCurrent, fit.Slope)
		}
		fx, fy := sampleLine(px, model)
		if len(fx) > 0 {
			series = append(series, chart.ContinuousSeries{
				Name:    name,
				XValues: fx,
				YValues: fy,
				Style:   fitStyle(),
			})
		}
	}

	yAxis := chart.YAxis{Name: "Current (mA)"}
	title := "I-V Characteristic (Linear Scale)"
	if logY {
		yAxis = chart.YAxis{Name: "Current (mA) - Log Scale", Range: &chart.LogarithmicRange{}}
		title = "I-V Characteristic (Log Scale)"
	}

	graph := chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		DPI:    r.dpi,
		XAxis:  chart.XAxis{Name: "Voltage (V)"},
		YAxis:  yAxis,
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// sampleLine evaluates model at fitLineSamples points spanning the
// finite values of x. It returns empty slices when the span is
// degenerate.
func sampleLine(x []float64, model func(float64) float64) (fx, fy []float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if !(hi > lo) {
		return nil, nil
	}

	fx = make([]float64, fitLineSamples)
	fy = make([]float64, fitLineSamples)
	step := (hi - lo) / float64(fitLineSamples-1)
	for i := range fx {
		v := lo + float64(i)*step
		fx[i] = v
		fy[i] = model(v)
	}
	return fx, fy
}

// positivePairs filters to rows with strictly positive y
func positivePairs(x, y []float64) (px, py []float64) {
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || y[i] <= 0 {
			continue
		}
		px = append(px, x[i])
		py = append(py, y[i])
	}
	return px, py
}
