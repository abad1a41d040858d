// Package logger provides structured logging for the media review engine
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
)

// Logger wraps zerolog with review-specific functionality
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	// Pretty printing for development
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "mediareview").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info logs an info message
func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) *zerolog.Event {
	return l.zlog.Debug().Str("msg", msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) *zerolog.Event {
	return l.zlog.Warn().Str("msg", msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// SessionLogger returns a logger for a review session
func (l *Logger) SessionLogger(actor string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "session").
			Str("actor", actor).
			Logger(),
	}
}

// StoreLogger returns a logger for operations on one version's annotations
func (l *Logger) StoreLogger(version int) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "store").
			Int("version", version).
			Logger(),
	}
}

// LogMutation logs an annotation mutation. No-op refusals are logged at
// debug, other failures at warn.
func (l *Logger) LogMutation(operation, id string, duration time.Duration, err error) {
	var event *zerolog.Event
	msg := "Annotation mutation completed"
	switch {
	case err == nil:
		event = l.zlog.Debug()
	case reviewerr.IsNoop(err):
		event = l.zlog.Debug().Str("code", string(reviewerr.CodeOf(err))).Err(err)
		msg = "Annotation mutation ignored"
	default:
		event = l.zlog.Warn().Err(err)
		msg = "Annotation mutation failed"
	}

	event.
		Str("operation", operation).
		Str("annotation", id).
		Dur("duration_ms", duration).
		Msg(msg)
}

// LogRejected logs a user input rejection
func (l *Logger) LogRejected(operation string, err error) {
	l.zlog.Info().
		Str("event", "input_rejected").
		Str("operation", operation).
		Str("code", string(reviewerr.CodeOf(err))).
		Err(err).
		Msg("User input rejected")
}

// LogThumbnailFailure logs a failed thumbnail generation
func (l *Logger) LogThumbnailFailure(version int, kind string, err error) {
	l.zlog.Warn().
		Str("event", "thumbnail_failed").
		Int("version", version).
		Str("kind", kind).
		Err(err).
		Msg("Thumbnail generation failed")
}

// LogSessionStart logs session startup
func (l *Logger) LogSessionStart(versions int, seed string) {
	l.zlog.Info().
		Str("event", "session_start").
		Int("versions", versions).
		Str("seed", seed).
		Msg("Review session starting")
}

// LogSessionShutdown logs session shutdown
func (l *Logger) LogSessionShutdown() {
	l.zlog.Info().
		Str("event", "session_shutdown").
		Msg("Review session shutting down")
}

// Global logger instance
var globalLogger *Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(cfg Config) {
	globalLogger = NewLogger(cfg)
	log.Logger = *globalLogger.GetZerolog()
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	if globalLogger == nil {
		// Initialize with defaults if not set
		InitGlobalLogger(Config{
			Level:  "info",
			Pretty: true,
		})
	}
	return globalLogger
}
