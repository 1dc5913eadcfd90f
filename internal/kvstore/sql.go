package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tphakala/hogwarts-heroes/internal/errors"
	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

// slowQueryThreshold marks queries logged as slow by the gorm adapter
const slowQueryThreshold = 200 * time.Millisecond

// Entry is one stored key-value pair.
type Entry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:longtext;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm's naming strategy.
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLStore persists entries in a relational database through gorm.
type SQLStore struct {
	db      *gorm.DB
	dialect string
	log     logger.Logger
}

// OpenSQLite opens (or creates) the SQLite database at path.
func OpenSQLite(path string, log logger.Logger) (*SQLStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.New(err).
				Component("kvstore").
				Category(errors.CategoryFileIO).
				Context("operation", "create_sqlite_dir").
				Context("path", dir).
				Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig(log))
	if err != nil {
		return nil, errors.New(err).
			Component("kvstore").
			Category(errors.CategoryDatabase).
			Context("operation", "open_sqlite").
			Context("path", path).
			Build()
	}

	// one writer avoids "database is locked" under concurrent Set calls
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	log.Debug("opened sqlite store", logger.String("path", path))
	return NewSQLStore(db, "sqlite", log)
}

// OpenMySQL connects to MySQL using a go-sql-driver DSN.
func OpenMySQL(dsn string, log logger.Logger) (*SQLStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	db, err := gorm.Open(mysql.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, errors.New(err).
			Component("kvstore").
			Category(errors.CategoryDatabase).
			Context("operation", "open_mysql").
			Build()
	}

	log.Debug("opened mysql store")
	return NewSQLStore(db, "mysql", log)
}

// NewSQLStore wraps an open gorm connection and migrates the entry table.
func NewSQLStore(db *gorm.DB, dialect string, log logger.Logger) (*SQLStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, errors.New(err).
			Component("kvstore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").
			Context("dialect", dialect).
			Build()
	}
	return &SQLStore{db: db, dialect: dialect, log: log}, nil
}

// keyEquals builds a dialect-quoted key condition; key is a reserved word in MySQL
func keyEquals(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func gormConfig(log logger.Logger) *gorm.Config {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &gorm.Config{Logger: logger.NewGormLogger(log, slowQueryThreshold)}
}

// Get returns the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where(keyEquals(key)).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, s.wrap(err, "get", key)
	}
	return entry.Value, true, nil
}

// Set upserts value under key.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return s.wrap(err, "set", key)
	}
	s.log.Trace("stored entry", logger.String("key", key), logger.Int("bytes", len(value)))
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where(keyEquals(key)).Delete(&Entry{}).Error; err != nil {
		return s.wrap(err, "delete", key)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return s.wrap(err, "close", "")
	}
	return sqlDB.Close()
}

func (s *SQLStore) wrap(err error, operation, key string) error {
	return errors.New(err).
		Component("kvstore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Context("dialect", s.dialect).
		Context("key", key).
		Build()
}
