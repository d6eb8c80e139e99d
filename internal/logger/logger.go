// Package logger builds the JSON application logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// New returns a JSON slog.Logger writing one object per line to w.
// The record time is emitted as "ts" in RFC3339Nano, rendered in loc.
func New(w io.Writer, loc *time.Location) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	})
	return slog.New(handler)
}

// SetupDefault installs New(w, loc) as the process-wide default logger.
func SetupDefault(w io.Writer, loc *time.Location) *slog.Logger {
	l := New(w, loc)
	slog.SetDefault(l)
	return l
}
