package logger

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// levelNames maps custom levels to their display names
var levelNames = map[slog.Level]string{
	traceLevelValue: "TRACE",
}

// replaceLevel renders custom levels by name instead of "DEBUG-4"
func replaceLevel(a slog.Attr) slog.Attr {
	if level, ok := a.Value.Any().(slog.Level); ok {
		if name, found := levelNames[level]; found {
			return slog.String(slog.LevelKey, name)
		}
	}
	return a
}

// newTextHandler returns a console handler without timestamps.
func newTextHandler(w io.Writer, level slog.Level, _ *time.Location) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.LevelKey:
				return replaceLevel(a)
			}
			return a
		},
	})
}

// newJSONHandler returns a file handler with RFC3339 timestamps in tz.
func newJSONHandler(w io.Writer, level slog.Level, tz *time.Location) slog.Handler {
	if tz == nil {
		tz = time.Local
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.In(tz).Format(time.RFC3339))
				}
			case slog.LevelKey:
				return replaceLevel(a)
			}
			return a
		},
	})
}

// discardHandler drops every record
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil } //nolint:gocritic // slog interface
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
