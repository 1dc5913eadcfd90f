package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger routes gorm output into a module logger. Statements log at
// trace, slow statements and failures at warn. A missing row is a cache
// miss for the key-value store and stays at trace.
type gormLogger struct {
	log    Logger
	slow   time.Duration
	silent bool
}

// NewGormLogger adapts log for gorm.Config.Logger. Statements slower than
// slow are reported; zero disables that check.
func NewGormLogger(log Logger, slow time.Duration) gormlogger.Interface {
	if log == nil {
		log = NewNopLogger()
	}
	return &gormLogger{log: log, slow: slow}
}

// LogMode only distinguishes Silent; levels come from the module logger.
func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *g
	next.silent = level == gormlogger.Silent
	return &next
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if !g.silent {
		g.log.Debug(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if !g.silent {
		g.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if !g.silent {
		g.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, statement func() (string, int64), err error) {
	if g.silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := statement()
	fields := []Field{
		String("sql", sql),
		Int64("rows", rows),
		Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		g.log.Warn("store statement failed", append(fields, Error(err))...)
	case g.slow > 0 && elapsed > g.slow:
		g.log.Warn("slow store statement", append(fields, Duration("threshold", g.slow))...)
	default:
		g.log.Trace("store statement", fields...)
	}
}
