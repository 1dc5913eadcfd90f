package character

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"golang.org/x/sync/singleflight"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
	"github.com/tphakala/hogwarts-heroes/internal/kvstore"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
	"github.com/tphakala/hogwarts-heroes/internal/potterdb"
)

// Traversal kinds used in logs and metrics
const (
	KindAll    = "all"
	KindFilter = "filter"
)

// CharacterAPI is the subset of the PotterDB client the repository needs.
type CharacterAPI interface {
	ListCharacters(ctx context.Context, opts potterdb.ListOptions) (*potterdb.Page, error)
	GetCharacter(ctx context.Context, id string) (*jason.Object, error)
}

// Metrics receives repository events.
type Metrics interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordTraversalPage(kind string)
	RecordTraversal(kind string, count int, duration time.Duration, err error)
	SetCachedCharacters(n int)
}

type nopMetrics struct{}

func (nopMetrics) RecordCacheHit()                                    {}
func (nopMetrics) RecordCacheMiss()                                   {}
func (nopMetrics) RecordTraversalPage(string)                         {}
func (nopMetrics) RecordTraversal(string, int, time.Duration, error) {}
func (nopMetrics) SetCachedCharacters(int)                            {}

// Options configures a Repository. API and Store are required.
type Options struct {
	API      CharacterAPI
	Store    kvstore.Store
	CacheTTL time.Duration
	Clock    func() time.Time
	Logger   logger.Logger
	Metrics  Metrics
}

// Repository serves the character catalog from the cache or the provider.
// Safe for concurrent use; overlapping full traversals are coalesced.
type Repository struct {
	api     CharacterAPI
	cache   *Cache
	log     logger.Logger
	metrics Metrics
	clock   func() time.Time
	group   singleflight.Group
}

// NewRepository wires a Repository from opts.
func NewRepository(opts Options) (*Repository, error) {
	if opts.API == nil || opts.Store == nil {
		return nil, errors.Newf("character repository requires an API client and a store").
			Component("character").
			Category(errors.CategoryConfiguration).
			Context("has_api", opts.API != nil).
			Context("has_store", opts.Store != nil).
			Build()
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	m := opts.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Repository{
		api:     opts.API,
		cache:   NewCache(opts.Store, opts.CacheTTL, clock, log),
		log:     log,
		metrics: m,
		clock:   clock,
	}, nil
}

// Cache exposes the underlying list cache.
func (r *Repository) Cache() *Cache {
	return r.cache
}

// GetAllCharacters returns the complete catalog, from the cache when it is
// fresh and otherwise from a full traversal that then replaces the cache.
func (r *Repository) GetAllCharacters(ctx context.Context) ([]Summary, error) {
	list, ts := r.cache.Load(ctx)
	if r.cache.IsFresh(list, ts) {
		r.metrics.RecordCacheHit()
		r.log.Debug("serving characters from cache",
			logger.Int("characters", len(list)),
			logger.Time("cached_at", *ts))
		return list, nil
	}

	r.metrics.RecordCacheMiss()
	r.log.Debug("character cache miss", logger.Int("cached", len(list)))
	return r.Refresh(ctx)
}

// Refresh traverses the full catalog regardless of cache freshness and
// saves the result. Concurrent callers share one traversal. A caller whose
// ctx ends stops waiting, but the shared traversal keeps running for the
// others and still saves its result.
func (r *Repository) Refresh(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError(err, 0)
	}

	ch := r.group.DoChan(KindAll, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		list, err := r.traverse(shared, KindAll, nil, 0)
		if err != nil {
			return nil, err
		}
		r.cache.Save(shared, list)
		r.metrics.SetCachedCharacters(len(list))
		return list, nil
	})

	select {
	case <-ctx.Done():
		r.log.Debug("caller stopped waiting for refresh", logger.Error(ctx.Err()))
		return nil, contextError(ctx.Err(), 0)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		list := res.Val.([]Summary)
		if res.Shared {
			return slices.Clone(list), nil
		}
		return list, nil
	}
}

// SearchCharacters matches query against the names of the full catalog.
func (r *Repository) SearchCharacters(ctx context.Context, query string) ([]Summary, error) {
	all, err := r.GetAllCharacters(ctx)
	if err != nil {
		return nil, err
	}
	return Search(all, query), nil
}

// FilterCharacters runs a provider-side filtered traversal with page size
// FilterPageSize. The result is not cached.
func (r *Repository) FilterCharacters(ctx context.Context, params FilterParams) ([]Summary, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return r.traverse(ctx, KindFilter, BuildFilterQuery(params), FilterPageSize)
}

// GetCharacterDetails fetches one character. It returns nil without error
// when the provider has no usable record for id.
func (r *Repository) GetCharacterDetails(ctx context.Context, id string) (*Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.Newf("character id is required").
			Component("character").
			Category(errors.CategoryValidation).
			Build()
	}

	record, err := r.api.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		r.log.Debug("character not found", logger.String("id", id))
		return nil, nil
	}

	detail := NormalizeDetail(record)
	if detail.ID == "" {
		r.log.Warn("character record without id", logger.String("requested_id", id))
		return nil, nil
	}
	return &detail, nil
}

// CacheStatus reports the state of the cached catalog.
func (r *Repository) CacheStatus(ctx context.Context) CacheStatus {
	return r.cache.Status(ctx)
}

// ClearCache drops the cached catalog.
func (r *Repository) ClearCache(ctx context.Context) error {
	if err := r.cache.Clear(ctx); err != nil {
		return errors.New(err).
			Component("character").
			Category(errors.CategoryCache).
			Context("operation", "clear_cache").
			Build()
	}
	r.metrics.SetCachedCharacters(0)
	r.log.Info("character cache cleared")
	return nil
}

func (r *Repository) traverse(ctx context.Context, kind string, filters url.Values, size int) ([]Summary, error) {
	start := r.clock()
	pages := 0
	list, err := traverse(ctx, r.api, filters, size, func(page, last int) {
		pages = page
		r.metrics.RecordTraversalPage(kind)
		r.log.Trace("traversal page done",
			logger.String("kind", kind),
			logger.Int("page", page),
			logger.Int("last", last))
	})
	elapsed := r.clock().Sub(start)
	r.metrics.RecordTraversal(kind, len(list), elapsed, err)

	if err != nil {
		r.log.Error("character traversal failed",
			logger.Error(err),
			logger.String("kind", kind),
			logger.Int("pages_done", pages))
		return nil, err
	}

	r.log.Info("character traversal complete",
		logger.String("kind", kind),
		logger.Int("pages", pages),
		logger.Int("characters", len(list)),
		logger.Duration("duration", elapsed))
	return list, nil
}
