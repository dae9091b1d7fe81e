package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: LevelDebug, Format: "json", Output: &buf})
	require.NoError(t, err)

	LogPhaseComplete(l.With("run_id", "abc"), "lex", "tokens", 12)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Completed phase", record["msg"])
	assert.Equal(t, "lex", record["phase"])
	assert.Equal(t, "abc", record["run_id"])
	assert.Equal(t, float64(12), record["tokens"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: LevelWarn, Format: "text", Output: &buf})
	require.NoError(t, err)

	LogPhase(l, "parse")
	l.Info("ignored")
	assert.Empty(t, buf.String())

	l.Warn("kept", "file", "a.prgm")
	assert.True(t, strings.Contains(buf.String(), "msg=kept"), buf.String())
	assert.Contains(t, buf.String(), "file=a.prgm")
}

func TestUnknownFormat(t *testing.T) {
	_, err := New(Config{Format: "xml"})
	assert.EqualError(t, err, `unknown log format "xml"`)
}

func TestInitSetsGlobal(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		defaultLogger = nil
		slog.SetDefault(prev)
	})

	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: LevelInfo, Format: "text", Output: &buf}))
	Info("hello", "n", 1)
	Debug("dropped")
	assert.Contains(t, buf.String(), "msg=hello n=1")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Same(t, defaultLogger, Get())
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
