package logger

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jumppad-labs/collector-stack/pkg/secret"
)

func TestLoggerRespectsLevel(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewLogger(b, LogLevelInfo)

	l.Debug("hidden")
	l.Info("shown", "stack", "dev")

	require.NotContains(t, b.String(), "hidden")
	require.Contains(t, b.String(), "shown")
	require.Contains(t, b.String(), "stack=dev")
	require.False(t, l.IsDebug())
}

func TestTraceLogsAtDebug(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewLogger(b, LogLevelTrace)

	l.Debug("detail")

	require.Contains(t, b.String(), "detail")
	require.True(t, l.IsDebug())
}

func TestSetLevelAndOutput(t *testing.T) {
	first := &bytes.Buffer{}
	second := &bytes.Buffer{}

	l := NewLogger(first, LogLevelError)
	l.SetLevel(LogLevelDebug)
	l.SetOutput(second)

	l.Debug("moved")

	require.Equal(t, LogLevelDebug, l.Level())
	require.Equal(t, second, l.Output())
	require.Empty(t, first.String())
	require.Contains(t, second.String(), "moved")
}

func TestStandardWriterLogsLines(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewLogger(b, LogLevelDebug)

	fmt.Fprintln(l.StandardWriter(), "Updating (dev)")

	require.Contains(t, b.String(), "Updating (dev)")
}

func TestHCLoggerSharesOutputAndRedactsSecrets(t *testing.T) {
	b := &bytes.Buffer{}
	l := NewLogger(b, LogLevelDebug)

	hl := LoggerAsHCLogger(l)
	hl.Debug("Declaring image", "password", secret.New("hunter2"))

	require.True(t, hl.IsDebug())
	require.Contains(t, b.String(), "Declaring image")
	require.Contains(t, b.String(), secret.Redacted)
	require.NotContains(t, b.String(), "hunter2")
}
