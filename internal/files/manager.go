// Package files manages the artifacts an analysis run writes: the
// output directory, plot images, the text report, and the statistics
// CSV.
package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	iverrors "ivcli/internal/errors"
)

// Manager resolves artifact paths under a single output directory.
// Concurrent runs must use distinct output directories; file writes
// are not coordinated.
type Manager struct {
	outputDir string
}

// NewManager creates a manager rooted at outputDir
func NewManager(outputDir string) *Manager {
	return &Manager{outputDir: outputDir}
}

// OutputDir returns the root output directory
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// EnsureOutputDir creates the output directory tree
func (m *Manager) EnsureOutputDir() error {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return iverrors.NewOutputError(m.outputDir, "create directory", err)
	}
	return nil
}

// GroupPlotPath names the plot for a temperature group, encoding the
// group key into the filename.
func (m *Manager) GroupPlotPath(temperature float64) string {
	return filepath.Join(m.outputDir, fmt.Sprintf("iv_characteristic_%dK.png", int(temperature)))
}

// SweepPlotPath names a whole-sweep plot in its linear or log variant
func (m *Manager) SweepPlotPath(logY bool) string {
	if logY {
		return filepath.Join(m.outputDir, "iv_sweep_log.png")
	}
	return filepath.Join(m.outputDir, "iv_sweep_linear.png")
}

// ReportPath names the text report
func (m *Manager) ReportPath() string {
	return filepath.Join(m.outputDir, "analysis_report.txt")
}

// FitCSVPath names the fit-statistics CSV
func (m *Manager) FitCSVPath() string {
	return filepath.Join(m.outputDir, "fit_statistics.csv")
}

// SavePNG writes rendered image bytes produced by render into path.
// A failure affects only this artifact.
func (m *Manager) SavePNG(path string, render func(f *os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return iverrors.NewOutputError(path, "create", err)
	}
	defer file.Close()

	if err := render(file); err != nil {
		file.Close()
		os.Remove(path) // don't leave a truncated image behind
		return iverrors.NewOutputError(path, "render", err)
	}

	slog.Debug("saved plot", slog.String("path", path))
	return nil
}
