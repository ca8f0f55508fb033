// Package report renders analysis results as a human-readable text
// report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ivcli/internal/analysis"
	iverrors "ivcli/internal/errors"
)

const bannerWidth = 60

// Build formats a complete analysis report. The same string is used
// for printing and saving, so the two outputs are always identical.
func Build(run *analysis.ResultSet) string {
	var lines []string
	banner := strings.Repeat("=", bannerWidth)

	lines = append(lines, banner)
	lines = append(lines, "I-V CHARACTERISTICS ANALYSIS REPORT")
	lines = append(lines, banner)
	lines = append(lines, fmt.Sprintf("Run ID: %s", run.ID))
	lines = append(lines, fmt.Sprintf("Fit Mode: %s", run.Mode))
	lines = append(lines, fmt.Sprintf("Sample Area: %.2e m²", run.SampleArea))

	if run.Single != nil {
		lines = append(lines, "")
		lines = append(lines, "SINGLE SWEEP FIT:")
		lines = append(lines, strings.Repeat("-", 50))
		lines = append(lines, fitLines(*run.Single, run.Mode)...)
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("Number of Temperature Points: %d", len(run.Groups)))
	lines = append(lines, "")
	lines = append(lines, "TEMPERATURE-DEPENDENT CONDUCTIVITY ANALYSIS:")
	lines = append(lines, strings.Repeat("-", 50))

	// Groups arrive sorted by ascending temperature
	for _, fit := range run.Groups {
		lines = append(lines, fmt.Sprintf("Temperature: %.0f K", fit.Temperature))
		lines = append(lines, fitLines(fit, run.Mode)...)
		lines = append(lines, "")
	}

	for _, skip := range run.Skipped {
		lines = append(lines, fmt.Sprintf("Skipped: %.0f K (%d points, %d distinct voltages)",
			skip.Temperature, skip.Points, skip.DistinctVoltages))
	}
	if len(run.Skipped) > 0 {
		lines = append(lines, "")
	}

	if run.Trend != nil {
		lines = append(lines, "TEMPERATURE DEPENDENCE:")
		lines = append(lines, fmt.Sprintf("  Conductivity vs Temperature Slope: %.4f mA/m²/V/K", run.Trend.Slope))
		lines = append(lines, fmt.Sprintf("  Temperature Correlation R²: %.4f", run.Trend.RSquared))
		lines = append(lines, fmt.Sprintf("  Temperature Correlation P-value: %.2e", run.Trend.PValue))
	}

	return strings.Join(lines, "\n")
}

// fitLines formats the statistics block of one fit
func fitLines(fit analysis.FitResult, mode analysis.Mode) []string {
	var lines []string
	if mode == analysis.ModeLogLinear {
		lines = append(lines, fmt.Sprintf("  Equation: %s", fit.Equation(mode)))
		lines = append(lines, fmt.Sprintf("  Saturation Current I0: %.2e mA", fit.SaturationCurrent))
		lines = append(lines, fmt.Sprintf("  Semilog Slope: %.4f 1/V", fit.Slope))
	} else {
		lines = append(lines, fmt.Sprintf("  Slope (Conductivity): %.2f mA/m²/V", fit.Slope))
	}
	lines = append(lines, fmt.Sprintf("  R-squared: %.4f", fit.RSquared))
	lines = append(lines, fmt.Sprintf("  P-value: %.2e", fit.PValue))
	lines = append(lines, fmt.Sprintf("  Standard Error: %.2f", fit.StdErr))
	lines = append(lines, fmt.Sprintf("  Data Points: %d", fit.NPoints))
	return lines
}

// Write saves the report text as UTF-8, creating parent directories.
// The written bytes are exactly the report string.
func Write(text, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return iverrors.NewOutputError(path, "create directory", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return iverrors.NewOutputError(path, "write", err)
	}
	return nil
}
