package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultWriter(t *testing.T) {
	logger := New(Config{Level: slog.LevelInfo, Format: "json"})
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{name: "production uses json", environment: "production", wantJSON: true},
		{name: "development uses pretty", environment: "development", wantJSON: false},
		{name: "staging uses pretty", environment: "staging", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{
				Level:       slog.LevelInfo,
				Environment: tt.environment,
				Writer:      &buf,
			})
			logger.Info("merged timeline")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"merged timeline"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	handler := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Debug("dropped sponsor interval", "video_id", "abc", "start", 12.5)

	output := buf.String()
	assert.Contains(t, output, "DBG")
	assert.Contains(t, output, "dropped sponsor interval")
	assert.Contains(t, output, "video_id=abc")
	assert.Contains(t, output, "start=12.5")
}

func TestPrettyHandler_GroupsQualifyKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.Equal(t, handler, handler.WithGroup(""))

	logger := slog.New(handler).WithGroup("merge").With("tolerance", 2)
	logger.Info("done", "segments", 12)

	output := buf.String()
	assert.Contains(t, output, "merge.tolerance=2")
	assert.Contains(t, output, "merge.segments=12")
}

func TestNew_NoColor(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Writer: &buf, NoColor: true})
	logger.Warn("sponsor source degraded", "video_id", "abc")

	output := buf.String()
	assert.NotContains(t, output, "\033[")
	assert.Contains(t, output, "WRN sponsor source degraded video_id=abc")
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	}))
	logger.Info("test message")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{name: "string", value: slog.StringValue("test"), want: "test"},
		{name: "time", value: slog.TimeValue(now), want: now.Format(time.RFC3339)},
		{name: "duration", value: slog.DurationValue(5 * time.Second), want: "5s"},
		{name: "float", value: slog.Float64Value(600.348), want: "600.348"},
		{name: "int", value: slog.IntValue(42), want: "42"},
		{name: "string with spaces", value: slog.StringValue("Intro and setup"), want: `"Intro and setup"`},
		{name: "empty string", value: slog.StringValue(""), want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value))
		})
	}
}

func TestLogger_WithErrorAndField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	logger.WithError(errors.New("sponsor source timed out")).
		WithField("video_id", "dQw4w9WgXcQ").
		Info("keeping content-only timeline")

	output := buf.String()
	assert.Contains(t, output, "sponsor source timed out")
	assert.Contains(t, output, "dQw4w9WgXcQ")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Error("nobody hears this")
	})
}
