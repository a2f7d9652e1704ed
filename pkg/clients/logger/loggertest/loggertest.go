// Package loggertest provides a logger which writes to the test log.
package loggertest

import (
	"testing"

	"github.com/jumppad-labs/collector-stack/pkg/clients/logger"
)

type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// New returns a debug logger writing to the test log
func New(t *testing.T) logger.Logger {
	return logger.NewLogger(&testWriter{t}, logger.LogLevelDebug)
}
