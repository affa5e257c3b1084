// Package output provides terminal output for the projgen CLI: leveled
// logging and diagnostic reports.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// LogConfig configures SetupLogging.
type LogConfig struct {
	// Verbose enables debug messages, timestamps and caller reports.
	Verbose bool
	// Quiet suppresses everything below warnings. Verbose wins.
	Quiet bool
	// Writer receives log output, os.Stderr when nil.
	Writer io.Writer
}

var logger = log.NewWithOptions(os.Stderr, log.Options{})

// SetupLogging configures the global logger.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel

	switch {
	case cfg.Verbose:
		level = log.DebugLevel
	case cfg.Quiet:
		level = log.WarnLevel
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: cfg.Verbose,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// Logger returns the global logger.
func Logger() *log.Logger {
	return logger
}

// SiteLogger returns a logger prefixed with a call-site location.
func SiteLogger(location string) *log.Logger {
	return logger.WithPrefix(location)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...any) {
	logger.Error(msg, keyvals...)
}
