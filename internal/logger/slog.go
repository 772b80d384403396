package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	slogger *slog.Logger
	logFile *os.File
)

// InitSlog initializes the slog-based logger.
// If jsonOutput is true, logs are formatted as JSON for production.
// level is one of debug, info, warn, error; anything else means info.
func InitSlog(logDir string, jsonOutput bool, level string) error {
	var writer io.Writer = os.Stderr
	if logDir != "" {
		f, err := openLogFile(logDir)
		if err != nil {
			return err
		}
		logFile = f
		writer = io.MultiWriter(os.Stderr, logFile)
	}

	SetOutput(writer, jsonOutput, level)
	return nil
}

// SetOutput points the structured logger at w. Tests use it to capture output.
func SetOutput(w io.Writer, jsonOutput bool, level string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slogger = slog.New(handler)
	slog.SetDefault(slogger)
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CloseSlog closes the slog log file
func CloseSlog() error {
	if logFile != nil {
		return logFile.Close()
	}
	return nil
}

// Slog returns the slog.Logger instance for structured logging
func Slog() *slog.Logger {
	if slogger == nil {
		return slog.Default()
	}
	return slogger
}

// WithContext returns a logger with context fields
func WithContext(ctx context.Context) *slog.Logger {
	logger := Slog()

	if requestID := ctx.Value(ContextKeyRequestID); requestID != nil {
		logger = logger.With("request_id", requestID)
	}
	if tool := ctx.Value(ContextKeyTool); tool != nil {
		logger = logger.With("tool", tool)
	}

	return logger
}

// Context keys for structured logging
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyTool      contextKey = "tool"
)

// InfoContext logs an info message with context
func InfoContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

// ErrorContext logs an error with context
func ErrorContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

// WarnContext logs a warning with context
func WarnContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}

// DebugContext logs debug info with context
func DebugContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

// WithRequestID stores a request ID for WithContext to pick up.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext returns the request ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}
