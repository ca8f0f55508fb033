package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	iverrors "ivcli/internal/errors"
)

// LoadOptions controls parsing of a delimited instrument export.
type LoadOptions struct {
	// SkipRows is the number of preamble lines before the header row.
	// It must be supplied explicitly: a wrong value silently produces a
	// garbled header row, so the library refuses to guess.
	SkipRows int
	// Delimiter defaults to ',' when zero.
	Delimiter rune
}

// LoadTable reads a delimited .dat/.csv instrument export and returns
// the cleaned table. The file is expected to be UTF-8, optionally with
// a byte-order mark, with opts.SkipRows preamble lines, a header row,
// then data rows. Malformed rows are skipped; a file that yields zero
// usable rows is a DataFormatError.
func LoadTable(path string, opts LoadOptions) (*Table, error) {
	if opts.SkipRows < 0 {
		return nil, fmt.Errorf("skip rows must be non-negative, got %d", opts.SkipRows)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, iverrors.NewDataFormatError(path, "cannot read file", err)
	}

	// Strip UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	body, ok := skipLines(data, opts.SkipRows)
	if !ok {
		return nil, iverrors.NewDataFormatError(path,
			fmt.Sprintf("file has fewer than %d preamble lines", opts.SkipRows), nil)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	header, records, err := readRecords(body, delim)
	if err != nil {
		return nil, iverrors.NewDataFormatError(path, "cannot parse delimited data", err)
	}

	table, err := cleanRecords(path, header, records)
	if err != nil {
		return nil, err
	}

	slog.Debug("loaded table",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()),
		slog.Any("columns", table.ColumnNames()))

	return table, nil
}

// skipLines drops n physical lines from data. It reports failure when
// the file ends before n lines were seen.
func skipLines(data []byte, n int) ([]byte, bool) {
	for i := 0; i < n; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return nil, false
		}
		data = data[idx+1:]
	}
	return data, true
}

// readRecords parses the header row and data rows. Rows with more
// fields than the header are malformed and skipped; short rows are
// padded so missing trailing cells become NaN.
func readRecords(body []byte, delim rune) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	header := rows[0]
	var records [][]string
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > len(header) {
			slog.Debug("skipping malformed row",
				slog.Int("row_number", i+1),
				slog.Int("fields", len(row)),
				slog.Int("expected", len(header)))
			continue
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		records = append(records, row)
	}
	return header, records, nil
}

// isBlankRow reports whether every cell in the row is empty
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanRecords applies the cleaning pipeline: drop a stray leading
// index column, drop all-empty columns, normalize headers, and convert
// cells to float64 with NaN for anything unparseable.
func cleanRecords(path string, header []string, records [][]string) (*Table, error) {
	if len(header) == 0 || len(records) == 0 {
		return nil, iverrors.NewDataFormatError(path, "no data rows after cleaning", nil)
	}

	keep := make([]int, 0, len(header))
	for i := range header {
		keep = append(keep, i)
	}

	// A first column with an empty or placeholder header is a stray
	// row-index artifact from the instrument's export and is dropped.
	if isIndexArtifact(header[0]) {
		keep = keep[1:]
	}

	// Drop columns that are empty across all rows
	keep = dropEmptyColumns(keep, records)
	if len(keep) == 0 {
		return nil, iverrors.NewDataFormatError(path, "all columns empty", nil)
	}

	names := make([]string, 0, len(keep))
	columns := make(map[string][]float64, len(keep))
	for _, col := range keep {
		name := NormalizeHeader(header[col])
		// Disambiguate duplicate headers in file order
		base := name
		for n := 2; ; n++ {
			if _, exists := columns[name]; !exists {
				break
			}
			name = fmt.Sprintf("%s_%d", base, n)
		}

		values := make([]float64, len(records))
		for i, row := range records {
			values[i] = parseCell(row[col])
		}
		names = append(names, name)
		columns[name] = values
	}

	return NewTable(names, columns)
}

// isIndexArtifact reports whether a first-column header marks a stray
// index column ("", "Unnamed: 0" and friends).
func isIndexArtifact(header string) bool {
	trimmed := strings.TrimSpace(header)
	return trimmed == "" || strings.HasPrefix(strings.ToLower(trimmed), "unnamed")
}

// dropEmptyColumns filters keep down to columns with at least one
// non-empty cell.
func dropEmptyColumns(keep []int, records [][]string) []int {
	kept := keep[:0]
	for _, col := range keep {
		empty := true
		for _, row := range records {
			if strings.TrimSpace(row[col]) != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, col)
		}
	}
	return kept
}

// parseCell converts a cell to float64, NaN when empty or unparseable
func parseCell(cell string) float64 {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// NormalizeHeader canonicalizes a column header: trim whitespace,
// lowercase, spaces to underscores, parentheses removed. The transform
// is idempotent.
func NormalizeHeader(header string) string {
	s := strings.TrimSpace(header)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	return s
}
