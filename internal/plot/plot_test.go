package plot

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ivcli/internal/analysis"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func sweepData(n int) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for i := range x {
		x[i] = float64(i) * 0.05
		y[i] = 1e-6 * math.Exp(5*x[i])
	}
	return x, y
}

func TestRenderGroup(t *testing.T) {
	x := []float64{0, 0.1, 0.2, 0.3, 0.4}
	y := []float64{1, 3, 5, 7, 9}
	fit := analysis.FitResult{Temperature: 300, Slope: 20, Intercept: 1, RSquared: 1, NPoints: 5}

	var buf bytes.Buffer
	r := NewRenderer(400, 300, 96)
	require.NoError(t, r.RenderGroup(&buf, fit, analysis.ModeLinear, x, y))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "expected PNG output")
}

func TestRenderSweepLinearAndLog(t *testing.T) {
	x, y := sweepData(20)
	fit := &analysis.FitResult{Slope: 5, Intercept: math.Log(1e-6), SaturationCurrent: 1e-6, RSquared: 1}
	r := NewRenderer(400, 300, 96)

	t.Run("linear axis", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.RenderSweep(&buf, fit, analysis.ModeLogLinear, x, y, false))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
	})

	t.Run("log axis", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.RenderSweep(&buf, fit, analysis.ModeLogLinear, x, y, true))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
	})

	t.Run("no fit line", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.RenderSweep(&buf, nil, analysis.ModeLinear, x, y, false))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
	})
}

func TestRenderSweepLogAxisNeedsPositiveCurrents(t *testing.T) {
	x := []float64{0, 0.1, 0.2}
	y := []float64{-1, -2, 0}

	var buf bytes.Buffer
	r := NewRenderer(400, 300, 96)
	err := r.RenderSweep(&buf, nil, analysis.ModeLinear, x, y, true)
	assert.Error(t, err)
}

func TestSampleLine(t *testing.T) {
	t.Run("spans the x range", func(t *testing.T) {
		fx, fy := sampleLine([]float64{0.5, 0.1, 0.9}, func(v float64) float64 { return 2 * v })
		require.Len(t, fx, fitLineSamples)
		require.Len(t, fy, fitLineSamples)
		assert.InDelta(t, 0.1, fx[0], 1e-12)
		assert.InDelta(t, 0.9, fx[len(fx)-1], 1e-12)
		assert.InDelta(t, 1.8, fy[len(fy)-1], 1e-12)
	})

	t.Run("degenerate range yields nothing", func(t *testing.T) {
		fx, _ := sampleLine([]float64{0.3, 0.3, 0.3}, func(v float64) float64 { return v })
		assert.Empty(t, fx)

		fx, _ = sampleLine(nil, func(v float64) float64 { return v })
		assert.Empty(t, fx)
	})
}

func TestPositivePairs(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{-1, 0, 2, math.NaN(), 4}

	px, py := positivePairs(x, y)
	assert.Equal(t, []float64{2, 4}, px)
	assert.Equal(t, []float64{2, 4}, py)
}
