package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withPlainOutput(t *testing.T) {
	t.Helper()
	prevColor := color.NoColor
	prevLogger := slog.Default()
	color.NoColor = true
	t.Cleanup(func() {
		color.NoColor = prevColor
		slog.SetDefault(prevLogger)
	})
}

func TestInitializeWriter_Levels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		verbose   bool
		wantDebug bool
		wantInfo  bool
	}{
		{"default shows warnings only", false, false, false, false},
		{"verbose adds info", false, true, false, true},
		{"debug adds everything", true, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			withPlainOutput(t)
			var buf bytes.Buffer
			InitializeWriter(&buf, tt.debug, tt.verbose)

			// Act
			slog.Debug("debug line")
			slog.Info("info line")
			slog.Warn("warn line")

			// Assert
			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("info line")))
			assert.Contains(t, out, "[WARN]  warn line")
		})
	}
}

func TestPrettyHandler_FormatsAttributes(t *testing.T) {
	// Arrange
	withPlainOutput(t)
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	// Act
	slog.New(handler).With("run_id", "r1").Info("completed", "cache_status", "hit", "duration_ms", 12)
	slog.New(handler).WithGroup("request").Warn("slow", "duration_ms", 900)

	// Assert
	assert.Equal(t,
		"[INFO]  completed run_id=r1 cache_status=hit duration_ms=12\n"+
			"[WARN]  slow request.duration_ms=900\n",
		buf.String())
}

func TestContextHelpers(t *testing.T) {
	// Arrange
	withPlainOutput(t)
	var buf bytes.Buffer
	base := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := With(WithLogger(context.Background(), base), "mode", "chat")

	// Act
	Debug(ctx, "turn started")
	Error(ctx, "turn failed", errors.New("boom"), "reason", "network")

	// Assert
	out := buf.String()
	assert.Contains(t, out, "[DEBUG] turn started mode=chat")
	assert.Contains(t, out, "[ERROR] turn failed mode=chat reason=network error=boom")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
