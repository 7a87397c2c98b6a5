// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating configured loggers
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Name of the component producing logs
	Name string

	// Log level (debug, info, warn, error)
	Level string

	// Output format ("json" or "text", default: text)
	Format string

	// FilePath enables rotating file output when non-empty
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Additional outputs besides stderr or the log file
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "info",
		Format: "text",
	}
}

// NewLogger creates a logger from the given configuration.
//
// TUI commands log to a rotating file so log lines do not corrupt the
// terminal display; everything else defaults to stderr.
func NewLogger(cfg LoggerConfig) *Logger {
	var output io.Writer = os.Stderr

	if cfg.FilePath != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		output = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
	}

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return New(cfg.Name).
		WithLevel(ParseLevel(cfg.Level)).
		WithFormatter(GetFormatter(cfg.Format)).
		WithOutput(output)
}
