package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance. It writes to stderr at info level
// until Init is called.
var Logger = newLogger(os.Stderr, log.InfoLevel)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
		Prefix:          "adverse",
	})
}

// Init replaces the global logger with one at the named level ("debug", "info", "warn", "error").
func Init(w io.Writer, level string) error {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	Logger = newLogger(w, lvl)
	return nil
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// Fatal logs an error message and exits
func Fatal(msg string, keyvals ...interface{}) {
	Logger.Fatal(msg, keyvals...)
}

// WithPrefix returns a logger with a prefix
func WithPrefix(prefix string) *log.Logger {
	return Logger.WithPrefix(prefix)
}
