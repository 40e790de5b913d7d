// Package common provides shared utilities for stockreport
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
)

// Logger wraps arbor.ILogger so packages share one concrete logger type
type Logger struct {
	arbor.ILogger
}

func consoleWriter() arbormodels.WriterConfiguration {
	return arbormodels.WriterConfiguration{
		Type:             arbormodels.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	}
}

// NewLogger creates a console logger with the specified level
func NewLogger(level string) *Logger {
	l := arbor.NewLogger().
		WithConsoleWriter(consoleWriter()).
		WithLevelFromString(normalizeLevel(level))
	return &Logger{ILogger: l}
}

// NewLoggerFromConfig builds a logger from the [logging] section. Outputs may
// include "console" and "file"; no outputs falls back to console.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	l := arbor.NewLogger()

	console := len(cfg.Outputs) == 0
	for _, out := range cfg.Outputs {
		switch strings.ToLower(out) {
		case "console", "stdout":
			console = true
		case "file":
			path := cfg.FilePath
			if path == "" {
				path = "./logs/stockreport.log"
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
				console = true
				continue
			}
			l = l.WithFileWriter(arbormodels.WriterConfiguration{
				Type:       arbormodels.LogWriterTypeFile,
				FileName:   path,
				TimeFormat: "15:04:05",
				MaxSize:    100 * 1024 * 1024,
				MaxBackups: 3,
				TextOutput: cfg.Format != "json",
			})
		}
	}
	if console {
		l = l.WithConsoleWriter(consoleWriter())
	}

	return &Logger{ILogger: l.WithLevelFromString(normalizeLevel(cfg.Level))}
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewNoOpLogger()}
}

// WithCorrelation returns a child logger tagging every event with id
func (l *Logger) WithCorrelation(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "error":
		return strings.ToLower(strings.TrimSpace(level))
	case "warning":
		return "warn"
	default:
		return "info"
	}
}
