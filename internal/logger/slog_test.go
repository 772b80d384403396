package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithContext_AddsRequestAndTool(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true, "info")

	ctx := context.WithValue(context.Background(), ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, ContextKeyTool, "list_bees")
	InfoContext(ctx, "dispatched")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-1" || entry["tool"] != "list_bees" {
		t.Errorf("missing context fields in %v", entry)
	}
	if entry["msg"] != "dispatched" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false, "info")

	DebugContext(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
