package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{"debug": LogLevelDebug, "": LogLevelInfo, "WARN": LogLevelWarn, "error": LogLevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestStructuredLogger_Attributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf}).
		WithComponent("scheduler").WithSession("s-1").WithContext("script", "a.py")

	l.Info("executed", "target", 12)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "executed", entry["msg"])
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "s-1", entry["session_id"])
	assert.Equal(t, "a.py", entry["script"])
	assert.EqualValues(t, 12, entry["target"])
}

func TestStructuredLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "text", Output: &buf})
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestStructuredLogger_DomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "text", Output: &buf})

	l.LogExecution(10, 2, 1, time.Millisecond, nil)
	l.LogExecution(10, 0, 0, time.Millisecond, errors.New("boom"))
	l.LogSolve(1e-4, 1000, time.Millisecond, errors.New("no convergence"))
	l.LogAssistCall("mock", time.Millisecond, nil)

	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "\n"))
	assert.Contains(t, out, "Script executed")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "Kinematic solve did not converge")
	assert.Contains(t, out, "model=mock")
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("x")
	l.Error("y", "k", 1)
}
