package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Environment: "production", Writer: &buf})

	log.Info("tables loaded", "count", 4)

	assert.Contains(t, buf.String(), `"msg":"tables loaded"`)
	assert.Contains(t, buf.String(), `"count":4`)
}

func TestNew_PrettyOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Environment: "development", Writer: &buf})

	log.Info("cache invalidated", "tables", 4)

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "cache invalidated")
	assert.Contains(t, out, "tables=4")
	assert.NotContains(t, out, `"msg"`)
}

func TestPrettyHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelWarn, Format: "pretty", Writer: &buf})

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_GroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "pretty", Writer: &buf})

	log.WithGroup("source").Info("fetched", "table", "book")

	assert.Contains(t, buf.String(), "source.table=book")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.WithComponent("summary").Error("call failed", "error", errors.New("boom"))

	assert.Contains(t, buf.String(), `"component":"summary"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
