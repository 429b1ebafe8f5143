// Package batch orchestrates the correction pipeline over many sensor data
// files at once.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"seatekcli/internal/config"
	"seatekcli/internal/correction"
	"seatekcli/internal/exporter"
	"seatekcli/internal/files"
	"seatekcli/internal/loader"
)

// File processing statuses recorded in the batch summary.
const (
	StatusProcessed   = "Processed"
	StatusSkipped     = "Skipped (Empty/Load Error)"
	StatusFailed      = "Failed (Processing Error)"
	StatusExportError = "Failed (Export Error)"
	StatusDryRun      = "Dry Run"
)

// summaryFileName is written to the output directory after every live run.
const summaryFileName = "Batch_Processing_Summary.csv"

// Options selects which files a run covers and where output goes. Zero-value
// directory fields fall back to the configured paths.
type Options struct {
	Series     string
	RiverMiles []float64
	StartYear  int
	EndYear    int
	DryRun     bool
	DataDir    string
	OutputDir  string
}

// FileResult records the outcome for one data file.
type FileResult struct {
	Series          int
	Year            int
	YearIndex       int
	File            string
	RawPoints       int
	ProcessedPoints int
	Status          string
}

// Failures counts results that ended in a failure status.
func Failures(results []FileResult) int {
	n := 0
	for _, r := range results {
		if r.Status == StatusFailed || r.Status == StatusExportError {
			n++
		}
	}
	return n
}

// Runner executes correction runs over batches of sensor files.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRunner creates a batch runner.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run locates the selected files, corrects each one, and exports the results.
// Per-file failures are recorded in the returned results rather than aborting
// the run; the error covers setup problems only. A dry run resolves and lists
// the files without reading or writing anything.
func (r *Runner) Run(ctx context.Context, opts Options) ([]FileResult, error) {
	runID := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", runID))

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = r.cfg.Paths.DataDir
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = r.cfg.Paths.OutputDir
	}
	if outputDir == "" {
		outputDir = filepath.Join(dataDir, "output")
	}

	logger.Info("starting batch run",
		slog.String("series", opts.Series),
		slog.Int("start_year", opts.StartYear),
		slog.Int("end_year", opts.EndYear),
		slog.String("data_dir", dataDir),
		slog.String("output_dir", outputDir),
		slog.Bool("dry_run", opts.DryRun))

	var rm *files.RiverMileMap
	if path := r.cfg.Paths.RiverMileMap; path != "" {
		var err error
		rm, err = files.LoadRiverMileMap(path)
		if err != nil {
			logger.Warn("river mile map unavailable, proceeding without it",
				slog.String("path", path), slog.String("error", err.Error()))
			rm = nil
		}
	}

	discovery := files.NewDiscovery(dataDir, logger)
	series, err := discovery.ResolveSeries(opts.Series, opts.RiverMiles, rm)
	if err != nil {
		return nil, err
	}
	targets := discovery.FindFiles(series, opts.StartYear, opts.EndYear)
	if len(targets) == 0 {
		logger.Warn("nothing to process")
		return nil, nil
	}

	corrCfg, err := r.cfg.Processing.CorrectionConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid processing configuration: %w", err)
	}
	pipeline, err := correction.NewPipeline(corrCfg, logger)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(targets))

	if opts.DryRun {
		for i, target := range targets {
			logger.Info("dry run, would process file", slog.String("file", target.Name))
			results[i] = FileResult{
				Series:    target.Series,
				Year:      target.Year,
				YearIndex: target.YearIndex,
				File:      target.Name,
				Status:    StatusDryRun,
			}
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Batch.Concurrency)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.processFile(logger, pipeline, target, outputDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if err := r.writeSummary(outputDir, results); err != nil {
		return results, err
	}

	logger.Info("batch run complete",
		slog.Int("files", len(results)),
		slog.Int("failures", Failures(results)))
	return results, nil
}

// processFile runs one file through load, correction, and export.
func (r *Runner) processFile(logger *slog.Logger, pipeline *correction.Pipeline, target files.SensorFile, outputDir string) FileResult {
	logger = logger.With(
		slog.Int("series", target.Series),
		slog.Int("year", target.Year),
		slog.String("file", target.Name))

	result := FileResult{
		Series:    target.Series,
		Year:      target.Year,
		YearIndex: target.YearIndex,
		File:      target.Name,
	}

	raw, err := loader.New(logger).LoadFile(target.Path)
	if err != nil || raw.Len() == 0 {
		if err != nil {
			logger.Warn("failed to load file", slog.String("error", err.Error()))
		} else {
			logger.Warn("file contains no data points")
		}
		result.Status = StatusSkipped
		return result
	}
	result.RawPoints = raw.Len()

	corrected, err := pipeline.Process(raw)
	if err != nil {
		logger.Error("processing failed", slog.String("error", err.Error()))
		result.Status = StatusFailed
		return result
	}
	result.ProcessedPoints = corrected.Len()

	if err := r.export(logger, raw, corrected, target, outputDir); err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		result.Status = StatusExportError
		return result
	}

	result.Status = StatusProcessed
	logger.Info("file processed",
		slog.Int("raw_points", result.RawPoints),
		slog.Int("processed_points", result.ProcessedPoints))
	return result
}

// export writes the corrected CSV and the raw-versus-corrected comparison
// workbook for one file.
func (r *Runner) export(logger *slog.Logger, raw, corrected *correction.Table, target files.SensorFile, outputDir string) error {
	base := fmt.Sprintf("S%d_Y%02d_%d", target.Series, target.YearIndex, target.Year)

	csvPath := filepath.Join(outputDir, base+"_CorrectedData.csv")
	if err := exporter.NewCSVWriter(logger).WriteTable(csvPath, corrected); err != nil {
		return err
	}

	timeCol := r.cfg.Processing.TimeColumn
	flagged := r.flagOutliers(raw, corrected, timeCol)
	xlsxPath := filepath.Join(outputDir, base+"_Comparison.xlsx")
	return exporter.NewExcelWriter(logger).WriteComparison(xlsxPath, raw, corrected, timeCol, flagged)
}

// flagOutliers detects outliers in the raw data and maps their positions onto
// the corrected table by time value, for the comparison workbook flag column.
func (r *Runner) flagOutliers(raw, corrected *correction.Table, timeCol string) map[string][]int {
	rawTimes := raw.Values(timeCol)
	correctedTimes := corrected.Values(timeCol)
	if rawTimes == nil || correctedTimes == nil {
		return nil
	}
	rowByTime := make(map[float64]int, len(correctedTimes))
	for i, t := range correctedTimes {
		rowByTime[t] = i
	}

	flagged := make(map[string][]int)
	for _, name := range raw.NumericColumnNames() {
		if name == timeCol {
			continue
		}
		detector := &correction.OutlierDetector{
			ValueColumn: name,
			WindowSize:  r.cfg.Processing.WindowSize,
			Threshold:   r.cfg.Processing.Threshold,
			Logger:      r.logger,
		}
		for _, idx := range detector.Detect(raw) {
			if row, ok := rowByTime[rawTimes[idx]]; ok {
				flagged[name] = append(flagged[name], row)
			}
		}
	}
	return flagged
}

// writeSummary records per-file outcomes in the batch summary CSV.
func (r *Runner) writeSummary(outputDir string, results []FileResult) error {
	records := make([][]string, len(results))
	for i, res := range results {
		records[i] = []string{
			strconv.Itoa(res.Series),
			strconv.Itoa(res.Year),
			strconv.Itoa(res.YearIndex),
			res.File,
			strconv.Itoa(res.RawPoints),
			strconv.Itoa(res.ProcessedPoints),
			res.Status,
		}
	}
	path := filepath.Join(outputDir, summaryFileName)
	return exporter.NewCSVWriter(r.logger).WriteCSV(path, exporter.WriteOptions{
		Headers:   []string{"Series", "Year", "Year_Index", "File", "Raw_Points", "Processed_Points", "Status"},
		Records:   records,
		BOMPrefix: true,
	})
}
