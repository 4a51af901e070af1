// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog configures the structured log of a batch run. Console
// status lines are written separately; this log records the steps for later
// inspection.
package runlog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config selects where the run log goes.
type Config struct {
	// Path is a JSON log file, appended to. Empty disables the file.
	Path string
	// Verbose also writes a text log to Stderr at debug level.
	Verbose bool
	Stderr  io.Writer
}

// Setup builds a logger for cfg. The returned cleanup closes the log file
// and is never nil. When neither a file nor verbose output is configured the
// logger discards everything.
func Setup(cfg Config) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }

	var handlers []slog.Handler
	var file *os.File

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return discard(), noop, err
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return discard(), noop, err
		}
		file = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:       slog.LevelDebug,
			ReplaceAttr: utcTime,
		}))
	}

	if cfg.Verbose {
		w := cfg.Stderr
		if w == nil {
			w = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if len(handlers) == 0 {
		return discard(), noop, nil
	}

	l := slog.New(fanout(handlers))
	l.Debug("runlog.initialized", "path", cfg.Path, "verbose", cfg.Verbose)

	cleanup := noop
	if file != nil {
		cleanup = file.Close
	}
	return l, cleanup, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
	}
	return a
}
