package analysis

import (
	"fmt"

	iverrors "ivcli/internal/errors"
)

// Mode selects the fit model for a material class
type Mode int

const (
	// ModeLinear fits current density vs voltage by ordinary least
	// squares; the slope approximates conductivity. Used for ohmic
	// (metal) samples.
	ModeLinear Mode = iota
	// ModeLogLinear fits ln(current) vs voltage, recovering the diode
	// saturation current I0 = exp(intercept). Used for semiconductor
	// samples.
	ModeLogLinear
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "linear"
	case ModeLogLinear:
		return "log-linear"
	default:
		return "unknown"
	}
}

// ParseMode maps a material name to its fit mode
func ParseMode(material string) (Mode, error) {
	switch material {
	case "metal":
		return ModeLinear, nil
	case "semiconductor":
		return ModeLogLinear, nil
	default:
		return 0, fmt.Errorf("unknown material %q (want metal or semiconductor)", material)
	}
}

// FitResult holds the statistics of one least-squares fit. A FitResult
// is computed once and never mutated.
type FitResult struct {
	// Temperature is the group key in Kelvin; zero for ungrouped fits.
	Temperature float64
	Slope       float64
	Intercept   float64
	RSquared    float64
	PValue      float64
	StdErr      float64
	NPoints     int

	// SaturationCurrent is exp(intercept), populated for log-linear
	// fits only.
	SaturationCurrent float64
}

// Equation renders the fitted model as a human-readable string
func (r FitResult) Equation(mode Mode) string {
	if mode == ModeLogLinear {
		return fmt.Sprintf("I = %.2e × exp(%.2f × V)", r.SaturationCurrent, r.Slope)
	}
	return fmt.Sprintf("J = %.2f × V + %.2f", r.Slope, r.Intercept)
}

// ResultSet is the immutable outcome of one analysis run
type ResultSet struct {
	// ID identifies the run in logs and the report header.
	ID         string
	Mode       Mode
	SampleArea float64

	// Groups holds per-temperature fits sorted by ascending
	// temperature. Empty for ungrouped analyses.
	Groups []FitResult

	// Single is the ungrouped whole-file fit, when one was requested.
	Single *FitResult

	// Trend is the conductivity-vs-temperature secondary fit; nil when
	// fewer than 3 groups were fitted.
	Trend *FitResult

	// Skipped records temperature groups that failed the minimum-data
	// thresholds. They are warnings, not errors.
	Skipped []*iverrors.InsufficientDataError
}
