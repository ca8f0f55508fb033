// Command analyzer runs the I-V characterization pipeline over one
// instrument export: clean, fit per temperature group, then print the
// report and save plots and statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ivcli/internal/app"
	"ivcli/internal/config"
	"ivcli/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "ivcli.yaml", "path to YAML config file (optional)")
	material := flag.String("material", "", "material type: metal or semiconductor (overrides config)")
	sampleArea := flag.Float64("area", 0, "sample area in m² (overrides config)")
	skipRows := flag.Int("skip-rows", -1, "preamble lines before the header row (overrides config)")
	outputDir := flag.String("out", "", "output directory for plots and report (overrides config)")
	noSave := flag.Bool("no-save", false, "compute and print only, write nothing")
	csvExport := flag.Bool("csv", false, "also export fit statistics as CSV")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <data-file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPath := flag.Arg(0)

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flag overrides
	if *material != "" {
		cfg.Analysis.Material = *material
	}
	if *sampleArea > 0 {
		cfg.Analysis.SampleArea = *sampleArea
	}
	if *skipRows >= 0 {
		cfg.Input.SkipRows = *skipRows
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *csvExport {
		cfg.Output.SaveCSV = true
	}
	if *noSave {
		cfg.Output.SavePlots = false
		cfg.Output.SaveReport = false
		cfg.Output.SaveCSV = false
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	runner := app.NewRunner(cfg, logger, os.Stdout)

	artifacts, err := runner.Run(context.Background(), inputPath)
	if err != nil {
		if artifacts != nil {
			// Analysis succeeded; only the save step failed
			logger.Error("Failed to save artifacts", "error", err)
		} else {
			logger.Error("Analysis failed", "error", err)
		}
		os.Exit(1)
	}

	logger.Info("Analysis complete",
		"run_id", artifacts.Results.ID,
		"groups_fitted", len(artifacts.Results.Groups),
		"groups_skipped", len(artifacts.Results.Skipped),
		"files_saved", len(artifacts.SavedFiles),
	)
}
