// Package logging provides structured logging for sshfan.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelError LogLevel = "error"
)

// LogFormat represents the output format for logs
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
)

// Config holds logging configuration
type Config struct {
	Level  LogLevel  // Minimum log level to output
	Format LogFormat // Output format (json or text)
	Output io.Writer // Output destination (defaults to stderr)
	Quiet  bool      // If true, suppress non-error output
}

// Logger wraps slog.Logger. Logs go to stderr so they never mix with the
// prefixed output stream on stdout.
type Logger struct {
	logger *slog.Logger
	config Config
}

// NewLogger creates a new logger instance
func NewLogger(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: convertLogLevel(config.Level),
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return &Logger{
		logger: slog.New(handler),
		config: config,
	}
}

// NewLoggerFromConfig creates a logger from application configuration
func NewLoggerFromConfig(logLevel, logFormat string, quiet bool) *Logger {
	level := LevelInfo
	if logLevel == "error" {
		level = LevelError
	}

	format := FormatText
	if logFormat == "json" {
		format = FormatJSON
	}

	return NewLogger(Config{Level: level, Format: format, Quiet: quiet})
}

func convertLogLevel(level LogLevel) slog.Level {
	if level == LevelError {
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Info logs an informational message
func (l *Logger) Info(msg string, args ...any) {
	if l.config.Quiet {
		return // Suppress non-error output in quiet mode
	}
	l.logger.Info(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// IsQuiet returns whether the logger is in quiet mode
func (l *Logger) IsQuiet() bool {
	return l.config.Quiet
}

// LogDirectoryLoad logs host directory construction
func (l *Logger) LogDirectoryLoad(source string, aliases int) {
	l.Info("host directory loaded",
		"source", source,
		"aliases", aliases,
	)
}

// LogResolve logs host identifier resolution
func (l *Logger) LogResolve(identifier string, hosts int) {
	l.Info("host identifier resolved",
		"identifier", identifier,
		"hosts", hosts,
	)
}

// LogSessionStart logs the start of one remote session
func (l *Logger) LogSessionStart(host, user, command string) {
	l.Info("session started",
		"host", host,
		"user", user,
		"command", command,
	)
}

// LogSessionError logs a session startup failure
func (l *Logger) LogSessionError(host string, err error, errorType string) {
	l.Error("session failed",
		"host", host,
		"error", err.Error(),
		"error_type", errorType,
	)
}

// LogSessionDone logs session completion. waitErr carries the remote exit
// status, which does not distinguish "command failed" from "connection
// dropped" at this layer.
func (l *Logger) LogSessionDone(host string, duration time.Duration, waitErr error) {
	args := []any{
		"host", host,
		"duration_ms", duration.Milliseconds(),
	}
	if waitErr != nil {
		args = append(args, "exit", waitErr.Error())
	}
	l.Info("session done", args...)
}

// LogRunStart logs the start of a fan-out run
func (l *Logger) LogRunStart(hosts, commands, sessions int) {
	l.Info("run started",
		"hosts", hosts,
		"commands", commands,
		"sessions", sessions,
	)
}

// LogRunComplete logs fan-out run completion
func (l *Logger) LogRunComplete(started, failed int, duration time.Duration) {
	l.Info("run completed",
		"sessions_completed", started,
		"sessions_failed", failed,
		"total_duration_ms", duration.Milliseconds(),
	)
}
