package correction

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// Default configuration values for the correction pipeline.
const (
	DefaultWindowSize         = 5
	DefaultThreshold          = 3.0
	DefaultGapThresholdFactor = 3.0
	DefaultTimeColumn         = "Time (Seconds)"
)

// Config holds the resolved processing parameters for one pipeline run.
// Zero fields are filled with documented defaults by Normalize.
type Config struct {
	WindowSize         int
	Threshold          float64
	GapThresholdFactor float64
	GapMethod          GapMethod
	OutlierMethod      OutlierMethod
	JumpMethod         JumpMethod
	TimeColumn         string
	// ValueColumn names the column to correct. Empty selects the first
	// numeric column other than the time column.
	ValueColumn string
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize:         DefaultWindowSize,
		Threshold:          DefaultThreshold,
		GapThresholdFactor: DefaultGapThresholdFactor,
		GapMethod:          GapMethodTime,
		OutlierMethod:      OutlierMethodMedian,
		JumpMethod:         JumpMethodOffset,
		TimeColumn:         DefaultTimeColumn,
	}
}

// Normalize fills unset fields with their defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.WindowSize == 0 {
		c.WindowSize = def.WindowSize
	}
	if c.Threshold == 0 {
		c.Threshold = def.Threshold
	}
	if c.GapThresholdFactor == 0 {
		c.GapThresholdFactor = def.GapThresholdFactor
	}
	if c.GapMethod == GapMethodUnknown {
		c.GapMethod = def.GapMethod
	}
	if c.OutlierMethod == OutlierMethodUnknown {
		c.OutlierMethod = def.OutlierMethod
	}
	if c.JumpMethod == JumpMethodUnknown {
		c.JumpMethod = def.JumpMethod
	}
	if c.TimeColumn == "" {
		c.TimeColumn = def.TimeColumn
	}
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d", c.WindowSize)
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %g", c.Threshold)
	}
	if c.GapThresholdFactor <= 0 {
		return fmt.Errorf("gap threshold factor must be positive, got %g", c.GapThresholdFactor)
	}
	if c.GapMethod == GapMethodUnknown {
		return fmt.Errorf("gap method is not set")
	}
	if c.OutlierMethod == OutlierMethodUnknown {
		return fmt.Errorf("outlier method is not set")
	}
	if c.JumpMethod == JumpMethodUnknown {
		return fmt.Errorf("jump method is not set")
	}
	if c.TimeColumn == "" {
		return fmt.Errorf("time column is not set")
	}
	return nil
}

// Pipeline validates an input table and runs the three detect-and-correct
// stages (gaps, outliers, jumps) in fixed order. A Pipeline holds no state
// between Process calls and is safe to reuse across tables.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// NewPipeline resolves the configuration against defaults and validates it.
func NewPipeline(cfg Config, logger *slog.Logger) (*Pipeline, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}
	return &Pipeline{cfg: cfg, logger: loggerOrDefault(logger)}, nil
}

// Config returns the resolved configuration the pipeline runs with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process corrects discontinuities in the given table and returns the result
// as a new table. The input is never mutated. Column resolution failures
// abort the call before any stage runs; detection degeneracies inside stages
// are logged and treated as no findings.
func (p *Pipeline) Process(t *Table) (*Table, error) {
	cfg := p.cfg
	data := t.Copy()

	if err := resolveTimeColumn(data, cfg.TimeColumn, p.logger); err != nil {
		return nil, err
	}
	valueCol, err := resolveValueColumn(data, cfg.TimeColumn, cfg.ValueColumn, p.logger)
	if err != nil {
		return nil, err
	}

	p.logger.Info("processing data",
		"time_column", cfg.TimeColumn,
		"value_column", valueCol,
		"window_size", cfg.WindowSize,
		"threshold", cfg.Threshold,
		"gap_threshold_factor", cfg.GapThresholdFactor,
		"gap_method", cfg.GapMethod.String(),
		"outlier_method", cfg.OutlierMethod.String(),
		"jump_method", cfg.JumpMethod.String())

	if err := data.SortBy(cfg.TimeColumn); err != nil {
		return nil, fmt.Errorf("sort by time column: %w", err)
	}

	p.logger.Info("step 1: detecting and correcting gaps")
	gapDetector := &GapDetector{
		TimeColumn:      cfg.TimeColumn,
		ThresholdFactor: cfg.GapThresholdFactor,
		Logger:          p.logger,
	}
	if gaps := gapDetector.Detect(data); len(gaps) > 0 {
		corrector := &GapCorrector{
			TimeColumn:   cfg.TimeColumn,
			ValueColumns: []string{valueCol},
			Method:       cfg.GapMethod,
			Logger:       p.logger,
		}
		data = corrector.Correct(data, gaps)
		if err := data.SortBy(cfg.TimeColumn); err != nil {
			return nil, fmt.Errorf("re-sort after gap correction: %w", err)
		}
	} else {
		p.logger.Info("no gaps detected or corrected")
	}

	p.logger.Info("step 2: detecting and correcting outliers")
	outlierDetector := &OutlierDetector{
		ValueColumn: valueCol,
		WindowSize:  cfg.WindowSize,
		Threshold:   cfg.Threshold,
		Logger:      p.logger,
	}
	if outliers := outlierDetector.Detect(data); len(outliers) > 0 {
		corrector := &OutlierCorrector{
			ValueColumn: valueCol,
			WindowSize:  cfg.WindowSize,
			Method:      cfg.OutlierMethod,
			Logger:      p.logger,
		}
		data = corrector.Correct(data, outliers)
	} else {
		p.logger.Info("no outliers detected or corrected")
	}

	p.logger.Info("step 3: detecting and correcting jumps")
	jumpDetector := &JumpDetector{
		ValueColumn: valueCol,
		WindowSize:  cfg.WindowSize,
		Threshold:   cfg.Threshold,
		Logger:      p.logger,
	}
	if jumps := jumpDetector.Detect(data); len(jumps) > 0 {
		corrector := &JumpCorrector{
			ValueColumn: valueCol,
			WindowSize:  cfg.WindowSize,
			Logger:      p.logger,
		}
		data = corrector.Correct(data, jumps)
	} else {
		p.logger.Info("no jumps detected or corrected")
	}

	p.logger.Info("data processing complete", "value_column", valueCol, "rows", data.Len())
	return data, nil
}

// timeLayouts are the datetime representations accepted for conversion to
// elapsed seconds.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"02-01-2006",
}

// resolveTimeColumn ensures the time column exists and is numeric, converting
// a datetime-like text column to elapsed seconds since 1970-01-01 UTC.
func resolveTimeColumn(t *Table, name string, logger *slog.Logger) error {
	col := t.Column(name)
	if col == nil {
		return fmt.Errorf("time column %q not found in data columns %v", name, t.ColumnNames())
	}
	if col.Kind == KindNumeric {
		return nil
	}

	converted := make([]float64, len(col.Text))
	for i, cell := range col.Text {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			converted[i] = math.NaN()
			continue
		}
		seconds, err := parseTimestamp(cell)
		if err != nil {
			return fmt.Errorf("time column %q is not numeric and could not be converted: %w", name, err)
		}
		converted[i] = seconds
	}
	col.Kind = KindNumeric
	col.Float = converted
	col.Text = nil
	logger.Info("converted time column to elapsed seconds", "column", name)
	return nil
}

// parseTimestamp converts a datetime string to seconds since the Unix epoch.
func parseTimestamp(s string) (float64, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return float64(ts.Unix()), nil
		}
	}
	return 0, fmt.Errorf("unable to parse timestamp %q", s)
}

// resolveValueColumn validates the configured value column or auto-detects
// the first numeric column other than the time column.
func resolveValueColumn(t *Table, timeCol, valueCol string, logger *slog.Logger) (string, error) {
	if valueCol != "" {
		col := t.Column(valueCol)
		if col == nil {
			return "", fmt.Errorf("value column %q not found in data columns %v", valueCol, t.ColumnNames())
		}
		if col.Kind != KindNumeric {
			return "", fmt.Errorf("value column %q is not numeric", valueCol)
		}
		return valueCol, nil
	}
	for _, name := range t.NumericColumnNames() {
		if name != timeCol {
			logger.Info("auto-detected value column", "column", name)
			return name, nil
		}
	}
	return "", fmt.Errorf("no numeric value columns found in the data (excluding time column %q)", timeCol)
}
