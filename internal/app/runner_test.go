package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ivcli/internal/config"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

// writeGroupedSweep builds a metal-style export: three temperature
// groups with distinct conductivities.
func writeGroupedSweep(t *testing.T, preamble int) string {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < preamble; i++ {
		fmt.Fprintf(&sb, "# station preamble %d\n", i)
	}
	sb.WriteString("I-V Voltage (CH1) (V),I-V Current (CH1) (mA),Temperature (K)\n")
	slopes := map[float64]float64{100: 1, 200: 2, 300: 3}
	for _, temp := range []float64{100, 200, 300} {
		for _, v := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
			fmt.Fprintf(&sb, "%g,%g,%g\n", v, slopes[temp]*v*32e-6, temp+0.2)
		}
	}

	path := filepath.Join(t.TempDir(), "ETO_IV_metal.dat")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

// writeDiodeSweep builds a semiconductor export without a temperature
// channel.
func writeDiodeSweep(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("I-V Voltage (CH1) (V),I-V Current (CH1) (mA)\n")
	for i := 1; i <= 20; i++ {
		v := float64(i) * 0.02
		fmt.Fprintf(&sb, "%g,%g\n", v, 1e-9*math.Exp(5*v))
	}

	path := filepath.Join(t.TempDir(), "IV_semiconductor.dat")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

func testConfig(t *testing.T, material string, skipRows int) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Analysis.Material = material
	cfg.Input.SkipRows = skipRows
	cfg.Output.Dir = filepath.Join(t.TempDir(), "results")
	cfg.Output.SaveCSV = true
	cfg.Plot.Width = 400
	cfg.Plot.Height = 300
	cfg.Plot.DPI = 96
	require.NoError(t, cfg.Validate())
	return &cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunGroupedMetalPipeline(t *testing.T) {
	input := writeGroupedSweep(t, 16)
	cfg := testConfig(t, "metal", 16)

	var stdout bytes.Buffer
	runner := NewRunner(cfg, quietLogger(), &stdout)

	artifacts, err := runner.Run(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, artifacts)

	// Three fitted groups with rising conductivity
	require.Len(t, artifacts.Results.Groups, 3)
	assert.InDelta(t, 1.0, artifacts.Results.Groups[0].Slope, 1e-6)
	assert.InDelta(t, 3.0, artifacts.Results.Groups[2].Slope, 1e-6)
	require.NotNil(t, artifacts.Results.Trend)
	assert.Greater(t, artifacts.Results.Trend.Slope, 0.0)

	// Printed report matches the built report
	assert.Equal(t, artifacts.Report+"\n", stdout.String())
	assert.Contains(t, artifacts.Report, "Number of Temperature Points: 3")

	// Report, CSV, and one plot per group were saved
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "analysis_report.txt"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "fit_statistics.csv"))
	for _, temp := range []int{100, 200, 300} {
		plotPath := filepath.Join(cfg.Output.Dir, fmt.Sprintf("iv_characteristic_%dK.png", temp))
		data, err := os.ReadFile(plotPath)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), "expected PNG at %s", plotPath)
	}
	assert.Len(t, artifacts.SavedFiles, 5)

	// Saved report equals the in-memory text
	saved, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "analysis_report.txt"))
	require.NoError(t, err)
	assert.Equal(t, artifacts.Report, string(saved))
}

func TestRunSingleSemiconductorPipeline(t *testing.T) {
	input := writeDiodeSweep(t)
	cfg := testConfig(t, "semiconductor", 0)

	var stdout bytes.Buffer
	runner := NewRunner(cfg, quietLogger(), &stdout)

	artifacts, err := runner.Run(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, artifacts.Results.Single)
	assert.InDelta(t, 5.0, artifacts.Results.Single.Slope, 1e-6)
	assert.InDelta(t, 1e-9, artifacts.Results.Single.SaturationCurrent, 1e-12)

	assert.Contains(t, artifacts.Report, "SINGLE SWEEP FIT:")

	// Linear and log sweep plots saved
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "iv_sweep_linear.png"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "iv_sweep_log.png"))
}

func TestRunWithoutSideEffects(t *testing.T) {
	input := writeGroupedSweep(t, 0)
	cfg := testConfig(t, "metal", 0)
	cfg.Output.SavePlots = false
	cfg.Output.SaveReport = false
	cfg.Output.SaveCSV = false
	cfg.Output.PrintReport = false

	var stdout bytes.Buffer
	runner := NewRunner(cfg, quietLogger(), &stdout)

	artifacts, err := runner.Run(context.Background(), input)
	require.NoError(t, err)

	// Analysis is valid with no side effects at all
	assert.Len(t, artifacts.Results.Groups, 3)
	assert.Empty(t, artifacts.SavedFiles)
	assert.Empty(t, stdout.String())
	assert.NoDirExists(t, cfg.Output.Dir)
}

func TestRunBadMaterial(t *testing.T) {
	cfg := testConfig(t, "metal", 0)
	cfg.Analysis.Material = "plasma"

	runner := NewRunner(cfg, quietLogger(), io.Discard)
	_, err := runner.Run(context.Background(), "whatever.dat")
	assert.Error(t, err)
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t, "metal", 0)
	runner := NewRunner(cfg, quietLogger(), io.Discard)

	artifacts, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "absent.dat"))
	assert.Error(t, err)
	assert.Nil(t, artifacts)
}

func TestRunSaveFailureKeepsResults(t *testing.T) {
	input := writeGroupedSweep(t, 0)
	cfg := testConfig(t, "metal", 0)
	cfg.Output.PrintReport = false

	// Block the output directory with a plain file
	blocker := cfg.Output.Dir
	require.NoError(t, os.MkdirAll(filepath.Dir(blocker), 0755))
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	runner := NewRunner(cfg, quietLogger(), io.Discard)
	artifacts, err := runner.Run(context.Background(), input)

	require.Error(t, err)
	// Computed results survive the failed save step
	require.NotNil(t, artifacts)
	assert.Len(t, artifacts.Results.Groups, 3)
	assert.NotEmpty(t, artifacts.Report)
}
