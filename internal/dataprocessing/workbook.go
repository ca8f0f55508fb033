package dataprocessing

import (
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	iverrors "ivcli/internal/errors"
)

// headerSearchDepth bounds how far down a sheet the header row is
// looked for. Instrument workbooks carry at most a screenful of
// preamble.
const headerSearchDepth = 40

// LoadWorkbookTable reads an .xlsx instrument export. Some test
// stations save sweeps as workbooks instead of delimited text; the
// sweep sheet is located by scanning for a header row naming a voltage
// and a current channel, so no sheet name or preamble length needs to
// be configured. The located rows pass through the same cleaning
// pipeline as delimited files.
func LoadWorkbookTable(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, iverrors.NewDataFormatError(path, "cannot open workbook", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}

		headerRow := findSweepHeader(rows)
		if headerRow < 0 {
			continue
		}

		slog.Debug("found sweep data in workbook",
			slog.String("path", path),
			slog.String("sheet", sheet),
			slog.Int("header_row", headerRow))

		header := rows[headerRow]
		var records [][]string
		for _, row := range rows[headerRow+1:] {
			if isBlankRow(row) {
				continue
			}
			if len(row) > len(header) {
				continue
			}
			for len(row) < len(header) {
				row = append(row, "")
			}
			records = append(records, row)
		}

		return cleanRecords(path, header, records)
	}

	return nil, iverrors.NewDataFormatError(path, "no sheet with I-V sweep data", nil)
}

// findSweepHeader returns the index of the first row that names both a
// voltage and a current channel, or -1.
func findSweepHeader(rows [][]string) int {
	depth := len(rows)
	if depth > headerSearchDepth {
		depth = headerSearchDepth
	}
	for i := 0; i < depth; i++ {
		text := strings.ToLower(strings.Join(rows[i], " "))
		if strings.Contains(text, "voltage") && strings.Contains(text, "current") {
			return i
		}
	}
	return -1
}
