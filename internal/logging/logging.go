// Package logging configures the package-level slog.Logger the CLI and
// the solver's optional progress callback write to. Core packages
// (internal/encoder, internal/sat, internal/trace) never import this
// package directly; cmd/alloysat wires a *slog.Logger into the solver's
// OnProgress hook after calling Init.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/kevinawalsh/alloysat/internal/sat"
)

// Log is the process-wide logger, set by Init. Nil until Init runs;
// callers that may run before CLI startup (tests) should tolerate nil.
var Log *slog.Logger

// Init configures Log from a level string (one of "debug", "info",
// "warn", "error"; anything else falls back to "info") and an optional
// log file path, writing to stdout and, when logFile is non-empty, also
// appending to that file.
func Init(level, logFile string) error {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	writers := []io.Writer{os.Stdout}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	})

	Log = slog.New(handler)
	slog.SetDefault(Log)
	return nil
}

// Progress returns a sat.Stats callback (see internal/sat's OnProgress
// field) that logs at debug level, or nil when no logger is configured:
// the solver treats a nil callback as "no progress reporting", so a test
// or library caller that never calls Init gets silent behavior by
// default, matching the "always optional" contract.
func Progress(command string) func(sat.Stats) {
	if Log == nil {
		return nil
	}
	return func(stats sat.Stats) {
		Log.Debug("solve progress", "command", command,
			"conflicts", stats.Conflicts, "decisions", stats.Decisions,
			"propagations", stats.Propagations, "restarts", stats.Restarts,
			"learnts", stats.LearntClauses, "deleted", stats.DeletedClauses)
	}
}
