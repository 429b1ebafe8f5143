// Command seriescorrect runs the Seatek discontinuity correction pipeline
// over a batch of raw sensor files and exports the corrected results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"seatekcli/internal/batch"
	"seatekcli/internal/config"
	"seatekcli/internal/infrastructure"
)

func main() {
	os.Exit(run())
}

func run() int {
	series := flag.String("series", "all", "series to process: comma-separated sensor IDs, or \"all\"")
	riverMiles := flag.String("river-miles", "", "comma-separated river miles to filter series by (requires a river mile map)")
	years := flag.String("years", "", "inclusive year range as START,END (required)")
	dryRun := flag.Bool("dry-run", false, "list the files that would be processed without processing them")
	configPath := flag.String("config", "", "path to YAML configuration file")
	dataDir := flag.String("data-dir", "", "directory containing raw data files (overrides configuration)")
	out := flag.String("out", "", "output directory (overrides configuration)")
	flag.Parse()

	startYear, endYear, err := parseYears(*years)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		return 2
	}
	miles, err := parseMiles(*riverMiles)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(cfg, logger)
	results, err := runner.Run(ctx, batch.Options{
		Series:     *series,
		RiverMiles: miles,
		StartYear:  startYear,
		EndYear:    endYear,
		DryRun:     *dryRun,
		DataDir:    *dataDir,
		OutputDir:  *out,
	})
	if err != nil {
		logger.Error("batch run failed", "error", err)
		return 1
	}

	if failures := batch.Failures(results); failures > 0 {
		logger.Error("batch run finished with failures",
			slog.Int("failures", failures), slog.Int("files", len(results)))
		return 1
	}

	logger.Info("batch run finished", slog.Int("files", len(results)))
	return 0
}

// parseYears splits a START,END range, accepting the bounds in either order.
func parseYears(s string) (int, int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, 0, fmt.Errorf("missing required -years flag")
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid -years %q: want START,END", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start year %q", parts[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end year %q", parts[1])
	}
	if start > end {
		start, end = end, start
	}
	return start, end, nil
}

func parseMiles(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var miles []float64
	for _, part := range strings.Split(s, ",") {
		m, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid river mile %q", part)
		}
		miles = append(miles, m)
	}
	return miles, nil
}
