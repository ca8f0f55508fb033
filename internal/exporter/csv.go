// Package exporter writes fit statistics to CSV for downstream
// processing in spreadsheets or notebooks.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"ivcli/internal/analysis"
	iverrors "ivcli/internal/errors"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options, creating
// parent directories as needed.
func WriteCSV(path string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return iverrors.NewOutputError(path, "create directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return iverrors.NewOutputError(path, "create", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return iverrors.NewOutputError(path, "write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return iverrors.NewOutputError(path, "write headers", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return iverrors.NewOutputError(path, fmt.Sprintf("write record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return iverrors.NewOutputError(path, "flush", err)
	}
	return nil
}

// WriteFitCSV exports per-group fit statistics, sorted as in the
// result set (ascending temperature).
func WriteFitCSV(path string, run *analysis.ResultSet) error {
	headers := []string{"temperature_k", "slope", "intercept", "r_squared", "p_value", "std_error", "n_points"}
	if run.Mode == analysis.ModeLogLinear {
		headers = append(headers, "saturation_current_ma")
	}

	records := make([][]string, 0, len(run.Groups))
	for _, fit := range run.Groups {
		record := []string{
			strconv.FormatFloat(fit.Temperature, 'f', 0, 64),
			formatFloat(fit.Slope),
			formatFloat(fit.Intercept),
			formatFloat(fit.RSquared),
			formatFloat(fit.PValue),
			formatFloat(fit.StdErr),
			strconv.Itoa(fit.NPoints),
		}
		if run.Mode == analysis.ModeLogLinear {
			record = append(record, formatFloat(fit.SaturationCurrent))
		}
		records = append(records, record)
	}

	slog.Info("writing fit statistics CSV",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	return WriteCSV(path, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// formatFloat renders a statistic compactly without precision loss
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
