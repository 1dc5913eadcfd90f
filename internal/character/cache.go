package character

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tphakala/hogwarts-heroes/internal/kvstore"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

const (
	// CacheKey is the single store key holding the summary list
	CacheKey = "hogwarts:characters:v1"

	// DefaultCacheTTL is the freshness window of a cached list
	DefaultCacheTTL = 24 * time.Hour
)

// cacheRecord is the persisted blob
type cacheRecord struct {
	Characters []Summary `json:"characters"`
	Timestamp  time.Time `json:"timestamp"`
}

// CacheStatus describes the persisted list without returning it.
type CacheStatus struct {
	Count     int        `json:"count"`
	Timestamp *time.Time `json:"timestamp"`
	Age       string     `json:"age,omitempty"`
	TTL       string     `json:"ttl"`
	Fresh     bool       `json:"fresh"`
}

// Cache persists the full summary list in a kvstore.Store. Reads fail open
// to a miss and writes are best effort; neither returns storage errors.
type Cache struct {
	store kvstore.Store
	ttl   time.Duration
	now   func() time.Time
	log   logger.Logger
}

// NewCache creates a cache over store. A zero ttl means DefaultCacheTTL and a
// nil clock means time.Now.
func NewCache(store kvstore.Store, ttl time.Duration, clock func() time.Time, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Cache{store: store, ttl: ttl, now: clock, log: log}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Load returns the cached list and the instant it was fetched. Any storage
// or decoding failure yields an empty list and a nil timestamp.
func (c *Cache) Load(ctx context.Context) ([]Summary, *time.Time) {
	blob, found, err := c.store.Get(ctx, CacheKey)
	if err != nil {
		c.log.Warn("failed to read character cache",
			logger.Error(err),
			logger.String("key", CacheKey))
		return []Summary{}, nil
	}
	if !found || blob == "" {
		return []Summary{}, nil
	}

	var record cacheRecord
	if err := json.Unmarshal([]byte(blob), &record); err != nil {
		c.log.Warn("failed to decode character cache",
			logger.Error(err),
			logger.Int("bytes", len(blob)))
		return []Summary{}, nil
	}
	if record.Characters == nil {
		record.Characters = []Summary{}
	}
	if record.Timestamp.IsZero() {
		return record.Characters, nil
	}
	ts := record.Timestamp
	return record.Characters, &ts
}

// Save overwrites the cached list, stamped with the current instant.
// Failures are logged only.
func (c *Cache) Save(ctx context.Context, list []Summary) {
	record := cacheRecord{Characters: list, Timestamp: c.now().UTC()}
	if record.Characters == nil {
		record.Characters = []Summary{}
	}

	blob, err := json.Marshal(record)
	if err != nil {
		c.log.Error("failed to encode character cache", logger.Error(err))
		return
	}
	if err := c.store.Set(ctx, CacheKey, string(blob)); err != nil {
		c.log.Warn("failed to persist character cache",
			logger.Error(err),
			logger.String("key", CacheKey),
			logger.Int("characters", len(list)))
		return
	}
	c.log.Debug("character cache saved",
		logger.Int("characters", len(list)),
		logger.Int("bytes", len(blob)))
}

// IsFresh reports whether a loaded list may be served without a traversal:
// it must be non-empty and younger than the TTL.
func (c *Cache) IsFresh(list []Summary, ts *time.Time) bool {
	if len(list) == 0 || ts == nil {
		return false
	}
	return c.now().Sub(*ts) < c.ttl
}

// Clear removes the cached list.
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, CacheKey)
}

// Status reports size, age and freshness of the cached list.
func (c *Cache) Status(ctx context.Context) CacheStatus {
	list, ts := c.Load(ctx)
	status := CacheStatus{
		Count:     len(list),
		Timestamp: ts,
		TTL:       c.ttl.String(),
		Fresh:     c.IsFresh(list, ts),
	}
	if ts != nil {
		status.Age = c.now().Sub(*ts).Round(time.Second).String()
	}
	return status
}
