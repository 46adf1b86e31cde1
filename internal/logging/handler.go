// Package logging builds the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"chatrelay/config"
)

// New returns a handler writing to w at level. config.LogFormatText always uses the
// colorized tint handler; config.LogFormatAuto uses it only when w is a terminal.
// Anything else produces JSON lines.
func New(format string, level slog.Level, w io.Writer) slog.Handler {
	if usePretty(format, w) {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(w),
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs a logger built by New on os.Stdout as the slog default.
func Setup(format string, level slog.Level) *slog.Logger {
	logger := slog.New(New(format, level, os.Stdout))
	slog.SetDefault(logger)
	return logger
}

func usePretty(format string, w io.Writer) bool {
	switch format {
	case config.LogFormatText:
		return true
	case config.LogFormatAuto, "":
		return isTerminal(w)
	default:
		return false
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
