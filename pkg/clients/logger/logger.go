package logger

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-hclog"
)

const (
	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
	LogLevelTrace = "trace"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Logger defines a abstract logger that can be used to log to the output
type Logger interface {
	// Set the logger level
	SetLevel(level string)

	Level() string

	// Set the logger output
	SetOutput(w io.Writer)

	Output() io.Writer

	// Info logs to info level
	Info(message string, keyvals ...interface{})
	// Debug logs to debug level
	Debug(message string, keyvals ...interface{})
	// Error logs to error level
	Error(message string, keyvals ...interface{})
	// Warn logs to warn level
	Warn(message string, keyvals ...interface{})

	// StandardWriter returns a writer which logs each line at debug level,
	// the engine progress streams are written here
	StandardWriter() io.Writer

	IsDebug() bool
}

type CharmLogger struct {
	internal *log.Logger
	writer   io.Writer
	level    string
}

func NewLogger(w io.Writer, level string) Logger {
	l := log.New(w)
	l.SetLevel(parseLevel(level))

	return &CharmLogger{l, w, level}
}

// trace is not a charm level, it is logged as debug
func parseLevel(level string) log.Level {
	if level == LogLevelTrace {
		return log.DebugLevel
	}

	lvl, _ := log.ParseLevel(level)
	return lvl
}

func (l *CharmLogger) SetOutput(w io.Writer) {
	l.writer = w
	l.internal.SetOutput(w)
}

func (l *CharmLogger) Output() io.Writer {
	return l.writer
}

func (l *CharmLogger) IsDebug() bool {
	return l.level == LogLevelDebug || l.level == LogLevelTrace
}

func (l *CharmLogger) SetLevel(level string) {
	l.level = level
	l.internal.SetLevel(parseLevel(level))
}

func (l *CharmLogger) Level() string {
	return l.level
}

func (l *CharmLogger) StandardWriter() io.Writer {
	return l.internal.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()
}

func (l *CharmLogger) Info(message string, keyvals ...interface{}) {
	l.internal.Info(message, keyvals...)
}

func (l *CharmLogger) Debug(message string, keyvals ...interface{}) {
	l.internal.Debug(message, keyvals...)
}

func (l *CharmLogger) Error(message string, keyvals ...interface{}) {
	l.internal.Error(message, keyvals...)
}

func (l *CharmLogger) Warn(message string, keyvals ...interface{}) {
	l.internal.Warn(message, keyvals...)
}

// LoggerAsHCLogger returns a hclog.Logger writing to the same output at the
// same level, the stack programs log through it
func LoggerAsHCLogger(l Logger) hclog.Logger {
	lo := hclog.LoggerOptions{}
	lo.Level = hclog.LevelFromString(l.Level())
	lo.Output = l.Output()

	return hclog.New(&lo)
}
