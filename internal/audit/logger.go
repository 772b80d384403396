package audit

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Kind classifies the outcome of a tool call.
type Kind string

const (
	KindSuccess Kind = "success"
)

// Event is one audited tool call.
type Event struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Tool       string    `json:"tool"`
	RequestID  string    `json:"request_id,omitempty"`
	TokenID    string    `json:"token_id,omitempty"`
	Kind       Kind      `json:"kind"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// Recorder persists audit events.
type Recorder interface {
	Record(event *Event) error
}

// Logger writes audit events as JSON lines and optionally forwards them to
// a Recorder.
type Logger struct {
	logger   *slog.Logger
	enabled  bool
	recorder Recorder
	mu       sync.RWMutex
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the process-wide audit logger. It writes to stderr since
// stdout carries the stdio transport.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr, false)
	})
	return defaultLogger
}

// New creates an audit logger writing to w.
func New(w io.Writer, enabled bool) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &Logger{
		logger:  slog.New(handler),
		enabled: enabled,
	}
}

// SetEnabled enables or disables audit logging
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// SetRecorder attaches a persistent store. Nil detaches it.
func (l *Logger) SetRecorder(r Recorder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorder = r
}

// Log records an audit event
func (l *Logger) Log(event *Event) {
	l.mu.RLock()
	enabled, recorder := l.enabled, l.recorder
	l.mu.RUnlock()

	if !enabled {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	attrs := []any{
		slog.String("audit", "true"),
		slog.String("tool", event.Tool),
		slog.String("kind", string(event.Kind)),
		slog.Bool("success", event.Success),
		slog.Int64("duration_ms", event.DurationMs),
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}
	if event.TokenID != "" {
		attrs = append(attrs, slog.String("token_id", event.TokenID))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}

	l.logger.Info("AUDIT", attrs...)

	if recorder != nil {
		if err := recorder.Record(event); err != nil {
			l.logger.Error("audit store write failed", slog.String("tool", event.Tool), slog.String("error", err.Error()))
		}
	}
}

func Log(event *Event) {
	Default().Log(event)
}
