package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Linregress performs an ordinary least-squares fit of y on x and
// reports slope, intercept, R², the two-sided p-value for slope
// significance (Student's t, n−2 degrees of freedom), and the standard
// error of the slope. It requires at least 3 points and 2 distinct x
// values.
func Linregress(x, y []float64) (FitResult, error) {
	if len(x) != len(y) {
		return FitResult{}, fmt.Errorf("mismatched series lengths: %d vs %d", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return FitResult{}, fmt.Errorf("need at least 3 points, got %d", n)
	}
	if distinctCount(x) < 2 {
		return FitResult{}, fmt.Errorf("need at least 2 distinct x values")
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, intercept, slope)

	stdErr, pValue := slopeSignificance(x, y, slope, intercept)

	return FitResult{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		PValue:    pValue,
		StdErr:    stdErr,
		NPoints:   n,
	}, nil
}

// slopeSignificance computes the standard error of the slope and the
// two-sided p-value of the t statistic slope/stderr with n−2 degrees of
// freedom. An exact fit has zero residual variance; it reports stderr 0
// and p-value 0 (or 1 for a zero slope), matching the convention of
// classical linregress implementations.
func slopeSignificance(x, y []float64, slope, intercept float64) (stdErr, pValue float64) {
	n := float64(len(x))
	df := n - 2

	meanX := stat.Mean(x, nil)

	var ssr, sxx float64
	for i := range x {
		resid := y[i] - (intercept + slope*x[i])
		ssr += resid * resid
		dx := x[i] - meanX
		sxx += dx * dx
	}

	if ssr <= 0 || sxx <= 0 {
		if slope == 0 {
			return 0, 1
		}
		return 0, 0
	}

	stdErr = math.Sqrt(ssr / df / sxx)

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	t := math.Abs(slope / stdErr)
	pValue = 2 * tDist.Survival(t)
	if pValue > 1 {
		pValue = 1
	}
	return stdErr, pValue
}

// distinctCount returns the number of distinct finite values in xs
func distinctCount(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}
