// Package logging provides structured logging for SwissPipe.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/openobserve/swisspipe/internal/config"
)

// Logger wraps slog.Logger with the project's constructor conventions.
type Logger struct {
	logger *slog.Logger
}

// New creates a new logger based on the configuration.
func New(cfg config.LoggingConfig) *Logger {
	level := parseLevel(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Level == "debug",
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// With returns a logger annotated with the given attributes.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// WithContext returns a logger for ctx. It currently returns l itself; no
// values are read from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) { l.logger.Debug(msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) { l.logger.Info(msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) { l.logger.Warn(msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) { l.logger.Error(msg, args...) }

// DebugContext logs a debug message with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.DebugContext(ctx, msg, args...)
}

// InfoContext logs an info message with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.InfoContext(ctx, msg, args...)
}

// WarnContext logs a warning message with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.WarnContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...interface{}) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(config.LoggingConfig{Level: "info", Format: "json"})
}

// Default returns the package-level default logger.
func Default() *Logger { return defaultLogger }

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) { defaultLogger = l }

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...interface{}) { defaultLogger.Debug(msg, args...) }

// Info logs an info message using the default logger.
func Info(msg string, args ...interface{}) { defaultLogger.Info(msg, args...) }

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...interface{}) { defaultLogger.Warn(msg, args...) }

// Error logs an error message using the default logger.
func Error(msg string, args ...interface{}) { defaultLogger.Error(msg, args...) }
