// Package analysis fits I-V models to cleaned sweep tables: linear
// (ohmic) or log-linear (diode) fits per temperature group, and a
// secondary conductivity-vs-temperature trend across groups.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/google/uuid"

	"ivcli/internal/dataprocessing"
	iverrors "ivcli/internal/errors"
)

// Group-fit thresholds. Groups below either are skipped with a
// warning, never an error.
const (
	minPointsPerGroup    = 3
	minDistinctVoltages  = 2
	minGroupsForTrendFit = 3
)

// Analyzer runs the regression pipeline over a cleaned table. It holds
// user-supplied configuration only; results are returned, not stored,
// so runs are independent.
type Analyzer struct {
	sampleArea float64
	mode       Mode
	logger     *slog.Logger
}

// NewAnalyzer creates an analyzer for the given sample area in m² and
// fit mode.
func NewAnalyzer(sampleArea float64, mode Mode, logger *slog.Logger) (*Analyzer, error) {
	if sampleArea <= 0 {
		return nil, fmt.Errorf("sample area must be positive, got %g", sampleArea)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{sampleArea: sampleArea, mode: mode, logger: logger}, nil
}

// AnalyzeGrouped groups the table by rounded temperature and fits each
// group. Each row belongs to exactly one group. Groups with fewer than
// 3 valid points or fewer than 2 distinct voltages are skipped with a
// warning. When at least 3 groups were fitted, the conductivity trend
// across temperature is fitted as well.
func (a *Analyzer) AnalyzeGrouped(ctx context.Context, table *dataprocessing.Table) (*ResultSet, error) {
	voltage, current, err := a.channels(table)
	if err != nil {
		return nil, err
	}
	temperature, err := table.Column(dataprocessing.ColTemperature)
	if err != nil {
		return nil, fmt.Errorf("grouped analysis needs a temperature channel: %w", err)
	}

	run := a.newRun()

	a.logger.InfoContext(ctx, "starting grouped analysis",
		"run_id", run.ID,
		"mode", a.mode.String(),
		"rows", table.NumRows(),
		"sample_area", a.sampleArea,
	)

	groups := groupByTemperature(temperature)

	for _, temp := range sortedKeys(groups) {
		indices := groups[temp]
		x, y := a.fitSeries(voltage, current, indices)

		if len(x) < minPointsPerGroup || distinctCount(x) < minDistinctVoltages {
			skip := &iverrors.InsufficientDataError{
				Temperature:      temp,
				Points:           len(x),
				DistinctVoltages: distinctCount(x),
			}
			run.Skipped = append(run.Skipped, skip)
			a.logger.WarnContext(ctx, "skipping temperature group",
				"run_id", run.ID,
				"temperature_k", temp,
				"points", skip.Points,
				"distinct_voltages", skip.DistinctVoltages,
			)
			continue
		}

		result, err := Linregress(x, y)
		if err != nil {
			// Thresholds above make this unreachable in practice;
			// treat a surprise the same as insufficient data.
			a.logger.WarnContext(ctx, "fit failed for temperature group",
				"run_id", run.ID,
				"temperature_k", temp,
				"error", err,
			)
			continue
		}

		result.Temperature = temp
		if a.mode == ModeLogLinear {
			result.SaturationCurrent = math.Exp(result.Intercept)
		}
		run.Groups = append(run.Groups, result)

		a.logger.DebugContext(ctx, "fitted temperature group",
			"run_id", run.ID,
			"temperature_k", temp,
			"slope", result.Slope,
			"r_squared", result.RSquared,
			"points", result.NPoints,
		)
	}

	sort.Slice(run.Groups, func(i, j int) bool {
		return run.Groups[i].Temperature < run.Groups[j].Temperature
	})

	run.Trend = TemperatureTrend(run.Groups)

	a.logger.InfoContext(ctx, "grouped analysis complete",
		"run_id", run.ID,
		"groups_fitted", len(run.Groups),
		"groups_skipped", len(run.Skipped),
		"trend_fitted", run.Trend != nil,
	)

	return run, nil
}

// AnalyzeSingle fits the whole table as one sweep, for files without a
// temperature channel.
func (a *Analyzer) AnalyzeSingle(ctx context.Context, table *dataprocessing.Table) (*ResultSet, error) {
	voltage, current, err := a.channels(table)
	if err != nil {
		return nil, err
	}

	run := a.newRun()

	a.logger.InfoContext(ctx, "starting single-sweep analysis",
		"run_id", run.ID,
		"mode", a.mode.String(),
		"rows", table.NumRows(),
	)

	indices := make([]int, len(voltage))
	for i := range indices {
		indices[i] = i
	}
	x, y := a.fitSeries(voltage, current, indices)

	if len(x) < minPointsPerGroup || distinctCount(x) < minDistinctVoltages {
		return nil, fmt.Errorf("single-sweep fit: %w", &iverrors.InsufficientDataError{
			Points:           len(x),
			DistinctVoltages: distinctCount(x),
		})
	}

	result, err := Linregress(x, y)
	if err != nil {
		return nil, fmt.Errorf("single-sweep fit: %w", err)
	}
	if a.mode == ModeLogLinear {
		result.SaturationCurrent = math.Exp(result.Intercept)
	}
	run.Single = &result

	a.logger.InfoContext(ctx, "single-sweep analysis complete",
		"run_id", run.ID,
		"slope", result.Slope,
		"r_squared", result.RSquared,
	)

	return run, nil
}

// TemperatureTrend fits per-group conductivity (slope) against
// temperature. It returns nil when fewer than 3 groups are available.
func TemperatureTrend(groups []FitResult) *FitResult {
	if len(groups) < minGroupsForTrendFit {
		return nil
	}

	temps := make([]float64, len(groups))
	slopes := make([]float64, len(groups))
	for i, g := range groups {
		temps[i] = g.Temperature
		slopes[i] = g.Slope
	}

	trend, err := Linregress(temps, slopes)
	if err != nil {
		return nil
	}
	return &trend
}

// Series holds the x/y points a fit is computed over: voltage against
// current density (linear mode) or ln(current) (log-linear mode).
type Series struct {
	X []float64
	Y []float64
}

// GroupSeries returns the per-temperature fit series, keyed by group
// temperature, for plotting alongside AnalyzeGrouped results.
func (a *Analyzer) GroupSeries(table *dataprocessing.Table) (map[float64]Series, error) {
	voltage, current, err := a.channels(table)
	if err != nil {
		return nil, err
	}
	temperature, err := table.Column(dataprocessing.ColTemperature)
	if err != nil {
		return nil, fmt.Errorf("grouped series need a temperature channel: %w", err)
	}

	series := make(map[float64]Series)
	for temp, indices := range groupByTemperature(temperature) {
		x, y := a.fitSeries(voltage, current, indices)
		series[temp] = Series{X: x, Y: y}
	}
	return series, nil
}

// SweepSeries returns the whole-file voltage and raw current pairs
// with missing values dropped, for whole-sweep plots.
func (a *Analyzer) SweepSeries(table *dataprocessing.Table) (Series, error) {
	voltage, current, err := a.channels(table)
	if err != nil {
		return Series{}, err
	}

	var s Series
	for i := range voltage {
		if math.IsNaN(voltage[i]) || math.IsNaN(current[i]) {
			continue
		}
		s.X = append(s.X, voltage[i])
		s.Y = append(s.Y, current[i])
	}
	return s, nil
}

// newRun creates an empty result set with a fresh run ID
func (a *Analyzer) newRun() *ResultSet {
	return &ResultSet{
		ID:         uuid.New().String(),
		Mode:       a.mode,
		SampleArea: a.sampleArea,
	}
}

// channels resolves the voltage and current columns
func (a *Analyzer) channels(table *dataprocessing.Table) (voltage, current []float64, err error) {
	voltage, err = table.Column(dataprocessing.ColVoltage)
	if err != nil {
		return nil, nil, fmt.Errorf("voltage channel: %w", err)
	}
	current, err = table.Column(dataprocessing.ColCurrent)
	if err != nil {
		return nil, nil, fmt.Errorf("current channel: %w", err)
	}
	return voltage, current, nil
}

// fitSeries builds the x/y series for the configured mode from the
// given row indices, dropping rows with missing values. Linear mode
// fits current density; log-linear mode fits ln(I) over strictly
// positive currents.
func (a *Analyzer) fitSeries(voltage, current []float64, indices []int) (x, y []float64) {
	for _, i := range indices {
		v, c := voltage[i], current[i]
		if math.IsNaN(v) || math.IsNaN(c) {
			continue
		}
		switch a.mode {
		case ModeLogLinear:
			if c <= 0 {
				continue
			}
			x = append(x, v)
			y = append(y, math.Log(c))
		default:
			x = append(x, v)
			y = append(y, c/a.sampleArea)
		}
	}
	return x, y
}

// groupByTemperature assigns each row index to its rounded-temperature
// group. Rows with a missing temperature reading belong to no group.
func groupByTemperature(temperature []float64) map[float64][]int {
	groups := make(map[float64][]int)
	for i, t := range temperature {
		if math.IsNaN(t) {
			continue
		}
		key := dataprocessing.TemperatureKey(t)
		groups[key] = append(groups[key], i)
	}
	return groups
}

// sortedKeys returns group keys in ascending order for deterministic
// iteration.
func sortedKeys(groups map[float64][]int) []float64 {
	keys := make([]float64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}
