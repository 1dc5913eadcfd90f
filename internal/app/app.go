// Package app assembles the long-lived components shared by the CLI
// commands and the API server.
package app

import (
	"time"

	"github.com/tphakala/hogwarts-heroes/internal/buildinfo"
	"github.com/tphakala/hogwarts-heroes/internal/character"
	"github.com/tphakala/hogwarts-heroes/internal/conf"
	"github.com/tphakala/hogwarts-heroes/internal/errors"
	"github.com/tphakala/hogwarts-heroes/internal/kvstore"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
	"github.com/tphakala/hogwarts-heroes/internal/observability"
	"github.com/tphakala/hogwarts-heroes/internal/potterdb"
	"github.com/tphakala/hogwarts-heroes/internal/quiz"
)

const sentryFlushTimeout = 2 * time.Second

// Context holds the application state built from Settings.
type Context struct {
	Settings   *conf.Settings
	Build      *buildinfo.Context
	Logging    *logger.CentralLogger
	Store      kvstore.Store
	Client     *potterdb.Client
	Repository *character.Repository
	Metrics    *observability.Metrics

	sentryFlush func(time.Duration) bool
	hooked      bool
}

// New wires logging, telemetry, the store, the PotterDB client and the
// character repository. On error everything opened so far is closed.
func New(settings *conf.Settings, build *buildinfo.Context) (ctx *Context, err error) {
	central, err := logger.NewCentralLogger(settings.LoggingConfig())
	if err != nil {
		return nil, errors.New(err).
			Component("app").
			Category(errors.CategoryConfiguration).
			Context("operation", "init_logging").
			Build()
	}
	logger.SetGlobal(central)

	ctx = &Context{
		Settings: settings,
		Build:    build,
		Logging:  central,
	}
	defer func() {
		if err != nil {
			ctx.Close()
			ctx = nil
		}
	}()

	log := central.Module("app")

	if settings.Sentry.Enabled {
		flush, err := errors.InitSentry(settings.Sentry.DSN, build.GetVersion())
		if err != nil {
			return ctx, err
		}
		ctx.sentryFlush = flush
		log.Info("error telemetry enabled")
	}

	if ctx.Metrics, err = observability.NewMetrics(); err != nil {
		return ctx, errors.New(err).
			Component("app").
			Category(errors.CategorySystem).
			Context("operation", "init_metrics").
			Build()
	}

	if ctx.Store, err = kvstore.Open(settings, central.Module("kvstore")); err != nil {
		return ctx, err
	}

	errMetrics := ctx.Metrics.Character
	errors.AddErrorHook(func(ee *errors.EnhancedError) {
		errMetrics.RecordError(ee.GetComponent(), ee.GetCategory())
	})
	ctx.hooked = true

	ctx.Client, err = potterdb.New(potterdb.Config{
		BaseURL:   settings.API.BaseURL,
		Timeout:   settings.API.Timeout,
		RateLimit: settings.API.RateLimit,
		UserAgent: settings.API.UserAgent,
	}, central.Module("potterdb"))
	if err != nil {
		return ctx, err
	}
	ctx.Client.SetObserver(ctx.Metrics.Character)

	ctx.Repository, err = character.NewRepository(character.Options{
		API:      ctx.Client,
		Store:    ctx.Store,
		CacheTTL: settings.Cache.TTL,
		Logger:   central.Module("character"),
		Metrics:  ctx.Metrics.Character,
	})
	if err != nil {
		return ctx, err
	}

	log.Debug("application initialized",
		logger.String("version", build.GetVersion()),
		logger.String("store", settings.Store.Type),
		logger.String("base_url", ctx.Client.BaseURL()))

	return ctx, nil
}

// Logger returns the logger for module name.
func (c *Context) Logger(name string) logger.Logger {
	return c.Logging.Module(name)
}

// QuizBank loads the configured question file, or the built-in bank when
// no path is set.
func (c *Context) QuizBank() (*quiz.Bank, error) {
	if c.Settings.Quiz.Path == "" {
		return quiz.LoadDefault()
	}
	return quiz.Load(c.Settings.Quiz.Path)
}

// Close releases the client, the store and the log writers.
func (c *Context) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.Logger("app").Warn("failed to close store", logger.Error(err))
		}
	}
	if c.hooked {
		errors.ClearErrorHooks()
	}
	if c.sentryFlush != nil {
		c.sentryFlush(sentryFlushTimeout)
	}
	if c.Logging != nil {
		_ = c.Logging.Close()
	}
}
