package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanoutHandler sends every record to each output whose level admits it.
type fanoutHandler []slog.Handler

// newFanoutHandler combines outputs, returning a lone output unwrapped.
func newFanoutHandler(outputs ...slog.Handler) slog.Handler {
	if len(outputs) == 1 {
		return outputs[0]
	}
	return fanoutHandler(outputs)
}

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, out := range h {
		if out.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Handler passes records by value
func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, out := range h {
		if !out.Enabled(ctx, record.Level) {
			continue
		}
		if err := out.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(out slog.Handler) slog.Handler { return out.WithAttrs(attrs) })
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	return h.each(func(out slog.Handler) slog.Handler { return out.WithGroup(name) })
}

func (h fanoutHandler) each(fn func(slog.Handler) slog.Handler) fanoutHandler {
	next := make(fanoutHandler, len(h))
	for i, out := range h {
		next[i] = fn(out)
	}
	return next
}
