package logger

import (
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Info(msg string, keyvals ...interface{})

	Warn(msg string, keyvals ...interface{})

	Error(msg string, keyvals ...interface{})

	Debug(msg string, keyvals ...interface{})
}

// New returns a JSON logger. In debug mode every record, tool call payloads included, goes to stdout.
func New(debug bool) Logger {
	level := slog.LevelInfo
	var out io.Writer = os.Stderr
	if debug {
		level = slog.LevelDebug
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(out, opts)
	return slog.New(handler)
}
