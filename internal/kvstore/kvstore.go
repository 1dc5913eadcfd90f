// Package kvstore provides the string key-value stores that back the
// character cache: an in-process go-cache store and a gorm-backed SQL store
// for SQLite or MySQL.
package kvstore

import (
	"context"

	"github.com/tphakala/hogwarts-heroes/internal/conf"
	"github.com/tphakala/hogwarts-heroes/internal/errors"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

// Store is a string key-value store.
// Get reports found=false with a nil error for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Store types accepted by Open
const (
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
	TypeMySQL  = "mysql"
)

// Open creates the store selected by settings.Store.Type.
func Open(settings *conf.Settings, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	log = log.Module("kvstore")

	switch settings.Store.Type {
	case TypeMemory:
		log.Debug("using in-memory store")
		return NewMemoryStore(), nil
	case TypeSQLite:
		return OpenSQLite(settings.Store.SQLite.Path, log)
	case TypeMySQL:
		return OpenMySQL(settings.MySQLDSN(), log)
	default:
		return nil, errors.Newf("unknown store type %q", settings.Store.Type).
			Component("kvstore").
			Category(errors.CategoryConfiguration).
			Context("store_type", settings.Store.Type).
			Build()
	}
}
