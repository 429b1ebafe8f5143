package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"seatekcli/internal/correction"
)

// envPrefix namespaces the environment variables that override file values.
const envPrefix = "SEATEK"

// Config is the complete application configuration.
type Config struct {
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Batch      BatchConfig      `yaml:"batch" envconfig:"BATCH"`
}

// ProcessingConfig carries the correction pipeline parameters.
type ProcessingConfig struct {
	WindowSize         int     `yaml:"window_size" envconfig:"WINDOW_SIZE" validate:"gt=0"`
	Threshold          float64 `yaml:"threshold" envconfig:"THRESHOLD" validate:"gt=0"`
	GapThresholdFactor float64 `yaml:"gap_threshold_factor" envconfig:"GAP_THRESHOLD_FACTOR" validate:"gt=0"`
	GapMethod          string  `yaml:"gap_method" envconfig:"GAP_METHOD" validate:"oneof=time linear"`
	OutlierMethod      string  `yaml:"outlier_method" envconfig:"OUTLIER_METHOD" validate:"oneof=median mean interpolate remove"`
	JumpMethod         string  `yaml:"jump_method" envconfig:"JUMP_METHOD" validate:"oneof=offset"`
	TimeColumn         string  `yaml:"time_col" envconfig:"TIME_COL" validate:"required"`
	ValueColumn        string  `yaml:"value_col" envconfig:"VALUE_COL"`
}

// PathsConfig carries the file system locations used by the batch runner.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir    string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	RiverMileMap string `yaml:"river_mile_map" envconfig:"RIVER_MILE_MAP"`
}

// LoggingConfig carries the logger setup.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// BatchConfig carries batch execution parameters.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"gte=1"`
}

// Default returns the configuration with every field at its documented
// default.
func Default() *Config {
	return &Config{
		Processing: ProcessingConfig{
			WindowSize:         5,
			Threshold:          3.0,
			GapThresholdFactor: 3.0,
			GapMethod:          "time",
			OutlierMethod:      "median",
			JumpMethod:         "offset",
			TimeColumn:         "Time (Seconds)",
		},
		Paths: PathsConfig{
			DataDir: "data",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/processing.log",
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}

// Load resolves configuration by overlaying an optional YAML file and then
// SEATEK_* environment variables onto the defaults, and validates the result.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Environment variables win over file values; fields without a matching
	// variable are left untouched.
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// CorrectionConfig converts the processing section into the typed pipeline
// configuration, rejecting unknown method names.
func (p ProcessingConfig) CorrectionConfig() (correction.Config, error) {
	gapMethod, err := correction.ParseGapMethod(p.GapMethod)
	if err != nil {
		return correction.Config{}, err
	}
	outlierMethod, err := correction.ParseOutlierMethod(p.OutlierMethod)
	if err != nil {
		return correction.Config{}, err
	}
	jumpMethod, err := correction.ParseJumpMethod(p.JumpMethod)
	if err != nil {
		return correction.Config{}, err
	}
	return correction.Config{
		WindowSize:         p.WindowSize,
		Threshold:          p.Threshold,
		GapThresholdFactor: p.GapThresholdFactor,
		GapMethod:          gapMethod,
		OutlierMethod:      outlierMethod,
		JumpMethod:         jumpMethod,
		TimeColumn:         p.TimeColumn,
		ValueColumn:        p.ValueColumn,
	}, nil
}
