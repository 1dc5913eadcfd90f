package kvstore

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory. Entries never expire;
// cache freshness is decided by the caller from the stored timestamp.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	// cleanup interval 0 keeps go-cache from starting its janitor goroutine
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

// Get returns the value stored under key.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v, found := m.cache.Get(key)
	if !found {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

// Set stores value under key, replacing any previous value.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Delete(key)
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}

// Close drops all entries.
func (m *MemoryStore) Close() error {
	m.cache.Flush()
	return nil
}
