package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/livecad/logging"
	"github.com/hupe1980/livecad/scheduler"
)

// Config defines the tunable behaviour of an Engine. It can be loaded from
// YAML; fields left out keep their DefaultConfig value.
//
// Example:
//
//	trigger: continuous
//	drag_precision: 0.01
//	commit_max_iterations: 2000
//	log:
//	  level: debug
type Config struct {
	// Trigger decides which edits execute the script.
	Trigger scheduler.TriggerMode `yaml:"trigger"`

	// Solver tolerances while dragging and on release.
	DragPrecision       float64 `yaml:"drag_precision"`
	DragMaxIterations   int     `yaml:"drag_max_iterations"`
	CommitPrecision     float64 `yaml:"commit_precision"`
	CommitMaxIterations int     `yaml:"commit_max_iterations"`

	// LockMargin is the relative size of lock markers around fixed solids.
	LockMargin float64 `yaml:"lock_margin"`

	// RedrawRate bounds pose notifications per second while dragging.
	// Zero means unlimited.
	RedrawRate float64 `yaml:"redraw_rate"`

	// MaxExecutionSteps bounds one script execution. Zero means unbounded.
	MaxExecutionSteps uint64 `yaml:"max_execution_steps"`

	// AssistMaxCalls bounds the calls to the script assistant. Zero means
	// unlimited.
	AssistMaxCalls int `yaml:"assist_max_calls"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects the logger built by Config.Logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// DefaultConfig provides the default engine configuration.
var DefaultConfig = Config{
	Trigger:             scheduler.OnNewline,
	DragPrecision:       1e-2,
	DragMaxIterations:   50,
	CommitPrecision:     1e-4,
	CommitMaxIterations: 1000,
	LockMargin:          0.22,
	Log:                 LogConfig{Level: "info", Format: "text"},
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports the first out of range setting.
func (c Config) Validate() error {
	switch {
	case c.DragPrecision <= 0 || c.CommitPrecision <= 0:
		return fmt.Errorf("invalid config: solver precisions must be positive")
	case c.DragMaxIterations <= 0 || c.CommitMaxIterations <= 0:
		return fmt.Errorf("invalid config: solver iteration bounds must be positive")
	case c.LockMargin < 0:
		return fmt.Errorf("invalid config: lock_margin must not be negative")
	case c.RedrawRate < 0:
		return fmt.Errorf("invalid config: redraw_rate must not be negative")
	case c.AssistMaxCalls < 0:
		return fmt.Errorf("invalid config: assist_max_calls must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Logger builds the structured logger described by the log section.
func (c Config) Logger() logging.Logger {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		level = logging.LogLevelInfo
	}
	cfg := logging.DefaultLoggerConfig()
	cfg.Level = level
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	cfg.Component = "engine"
	return logging.NewLogger(cfg)
}
