// Package app wires the analysis pipeline together: load and clean the
// input file, fit per-temperature models, then emit the report, plots,
// and CSV export the configuration asks for.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ivcli/internal/analysis"
	"ivcli/internal/config"
	"ivcli/internal/dataprocessing"
	"ivcli/internal/exporter"
	"ivcli/internal/files"
	"ivcli/internal/plot"
	"ivcli/internal/report"
)

// Artifacts is everything a run produced. Results and Report are
// always populated on success; SavedFiles lists artifacts written to
// disk.
type Artifacts struct {
	Results    *analysis.ResultSet
	Report     string
	SavedFiles []string
}

// Runner executes the analysis pipeline for one input file
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
}

// NewRunner creates a pipeline runner. stdout receives the printed
// report; pass os.Stdout outside of tests.
func NewRunner(cfg *config.Config, logger *slog.Logger, stdout io.Writer) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Runner{cfg: cfg, logger: logger, stdout: stdout}
}

// Run analyzes inputPath. Analysis failures are fatal and return a nil
// Artifacts. Save failures return the computed Artifacts together with
// the error: in-memory results stay valid when only the save step
// failed.
func (r *Runner) Run(ctx context.Context, inputPath string) (*Artifacts, error) {
	mode, err := analysis.ParseMode(r.cfg.Analysis.Material)
	if err != nil {
		return nil, err
	}

	table, err := r.loadTable(inputPath)
	if err != nil {
		return nil, err
	}

	analyzer, err := analysis.NewAnalyzer(r.cfg.Analysis.SampleArea, mode, r.logger)
	if err != nil {
		return nil, err
	}

	grouped := table.HasColumn(dataprocessing.ColTemperature)

	var results *analysis.ResultSet
	if grouped {
		results, err = analyzer.AnalyzeGrouped(ctx, table)
	} else {
		results, err = analyzer.AnalyzeSingle(ctx, table)
	}
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	artifacts := &Artifacts{
		Results: results,
		Report:  report.Build(results),
	}

	if r.cfg.Output.PrintReport {
		fmt.Fprintln(r.stdout, artifacts.Report)
	}

	if err := r.save(ctx, artifacts, analyzer, table, grouped); err != nil {
		return artifacts, err
	}

	return artifacts, nil
}

// loadTable picks the loader by file extension
func (r *Runner) loadTable(inputPath string) (*dataprocessing.Table, error) {
	if strings.EqualFold(filepath.Ext(inputPath), ".xlsx") {
		return dataprocessing.LoadWorkbookTable(inputPath)
	}
	return dataprocessing.LoadTable(inputPath, dataprocessing.LoadOptions{
		SkipRows:  r.cfg.Input.SkipRows,
		Delimiter: r.cfg.Input.DelimiterRune(),
	})
}

// save writes the artifacts enabled in configuration
func (r *Runner) save(ctx context.Context, artifacts *Artifacts, analyzer *analysis.Analyzer, table *dataprocessing.Table, grouped bool) error {
	out := r.cfg.Output
	if !out.SavePlots && !out.SaveReport && !out.SaveCSV {
		return nil
	}

	manager := files.NewManager(out.Dir)
	if err := manager.EnsureOutputDir(); err != nil {
		return err
	}

	if out.SaveReport {
		path := manager.ReportPath()
		if err := report.Write(artifacts.Report, path); err != nil {
			return err
		}
		artifacts.SavedFiles = append(artifacts.SavedFiles, path)
	}

	if out.SaveCSV && grouped {
		path := manager.FitCSVPath()
		if err := exporter.WriteFitCSV(path, artifacts.Results); err != nil {
			return err
		}
		artifacts.SavedFiles = append(artifacts.SavedFiles, path)
	}

	if out.SavePlots {
		if err := r.savePlots(ctx, artifacts, analyzer, table, grouped); err != nil {
			return err
		}
	}

	r.logger.InfoContext(ctx, "saved artifacts",
		"run_id", artifacts.Results.ID,
		"output_dir", out.Dir,
		"files", len(artifacts.SavedFiles),
	)

	return nil
}

// savePlots renders one plot per fitted group, or the linear and log
// sweep variants for ungrouped runs.
func (r *Runner) savePlots(ctx context.Context, artifacts *Artifacts, analyzer *analysis.Analyzer, table *dataprocessing.Table, grouped bool) error {
	renderer := plot.NewRenderer(r.cfg.Plot.Width, r.cfg.Plot.Height, r.cfg.Plot.DPI)
	manager := files.NewManager(r.cfg.Output.Dir)
	results := artifacts.Results

	if grouped {
		series, err := analyzer.GroupSeries(table)
		if err != nil {
			return err
		}
		for _, fit := range results.Groups {
			s, ok := series[fit.Temperature]
			if !ok {
				continue
			}
			path := manager.GroupPlotPath(fit.Temperature)
			err := manager.SavePNG(path, func(f *os.File) error {
				return renderer.RenderGroup(f, fit, results.Mode, s.X, s.Y)
			})
			if err != nil {
				return err
			}
			artifacts.SavedFiles = append(artifacts.SavedFiles, path)
		}
		return nil
	}

	sweep, err := analyzer.SweepSeries(table)
	if err != nil {
		return err
	}

	for _, logY := range []bool{false, true} {
		path := manager.SweepPlotPath(logY)
		err := manager.SavePNG(path, func(f *os.File) error {
			return renderer.RenderSweep(f, results.Single, results.Mode, sweep.X, sweep.Y, logY)
		})
		if err != nil {
			r.logger.WarnContext(ctx, "sweep plot not rendered",
				"run_id", results.ID,
				"path", path,
				"error", err,
			)
			continue
		}
		artifacts.SavedFiles = append(artifacts.SavedFiles, path)
	}
	return nil
}
