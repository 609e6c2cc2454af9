// Package logging wires slog for the assistant: a colored tint handler on the
// console and a JSON handler on the log file.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
)

var levels = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// ParseLevel maps a flag value to a slog level, defaulting to info.
func ParseLevel(s string) log.Level {
	if l, ok := levels[s]; ok {
		return l
	}
	return log.LevelInfo
}

// Setup builds the process logger. The returned closer releases the log file.
func Setup(console io.Writer, level string, file string) (*log.Logger, func() error, error) {
	lvl := ParseLevel(level)
	handlers := []log.Handler{
		tint.NewHandler(console, &tint.Options{Level: lvl, TimeFormat: "15:04:05"}),
	}

	closer := func() error { return nil }
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, fmt.Errorf("ensure log dir: %w", err)
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, log.NewJSONHandler(f, &log.HandlerOptions{Level: lvl}))
		closer = f.Close
	}

	return log.New(Fanout(handlers...)), closer, nil
}

// Discard is a logger for tests and for components constructed without one.
func Discard() *log.Logger {
	return log.New(log.NewTextHandler(io.Discard, nil))
}

type fanout []log.Handler

// Fanout sends every record to each handler that accepts its level.
func Fanout(hs ...log.Handler) log.Handler { return fanout(hs) }

func (f fanout) Enabled(ctx context.Context, l log.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r log.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []log.Attr) log.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) log.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
