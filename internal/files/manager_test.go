package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	iverrors "ivcli/internal/errors"
)

func TestManagerPaths(t *testing.T) {
	m := NewManager(filepath.Join("out", "run1"))

	assert.Equal(t, filepath.Join("out", "run1", "iv_characteristic_300K.png"), m.GroupPlotPath(300))
	assert.Equal(t, filepath.Join("out", "run1", "iv_sweep_linear.png"), m.SweepPlotPath(false))
	assert.Equal(t, filepath.Join("out", "run1", "iv_sweep_log.png"), m.SweepPlotPath(true))
	assert.Equal(t, filepath.Join("out", "run1", "analysis_report.txt"), m.ReportPath())
	assert.Equal(t, filepath.Join("out", "run1", "fit_statistics.csv"), m.FitCSVPath())
}

func TestEnsureOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "plots")
	m := NewManager(dir)

	require.NoError(t, m.EnsureOutputDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSavePNG(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.EnsureOutputDir())

	path := m.GroupPlotPath(100)
	err := m.SavePNG(path, func(f *os.File) error {
		_, werr := f.Write([]byte("png-bytes"))
		return werr
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestSavePNGFailureIsOutputError(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing-dir"))

	err := m.SavePNG(m.GroupPlotPath(100), func(f *os.File) error { return nil })
	require.Error(t, err)
	assert.True(t, iverrors.IsOutput(err))
}
