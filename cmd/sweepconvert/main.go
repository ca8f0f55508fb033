// Command sweepconvert converts an .xlsx instrument workbook into the
// delimited .csv form the analyzer and other tools consume. The sweep
// sheet is located automatically by its header row.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ivcli/internal/dataprocessing"
)

func main() {
	output := flag.String("out", "", "output CSV path (defaults to input name with .csv)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <workbook.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	outPath := *output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".csv"
	}

	table, err := dataprocessing.LoadWorkbookTable(inputPath)
	if err != nil {
		slog.Error("Failed to load workbook", "path", inputPath, "error", err)
		os.Exit(1)
	}

	if err := writeCSV(outPath, table); err != nil {
		slog.Error("Failed to write CSV", "path", outPath, "error", err)
		os.Exit(1)
	}

	slog.Info("Converted workbook",
		"input", inputPath,
		"output", outPath,
		"rows", table.NumRows(),
		"columns", len(table.ColumnNames()))
}

// writeCSV emits the cleaned table with normalized headers. NaN cells
// become empty fields.
func writeCSV(path string, table *dataprocessing.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	names := table.ColumnNames()
	if err := writer.Write(names); err != nil {
		return err
	}

	columns := make([][]float64, len(names))
	for i, name := range names {
		col, err := table.Column(name)
		if err != nil {
			return err
		}
		columns[i] = col
	}

	record := make([]string, len(names))
	for row := 0; row < table.NumRows(); row++ {
		for i := range names {
			v := columns[i][row]
			if v != v { // NaN
				record[i] = ""
				continue
			}
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
