// Package store implements the key-value backends of storage effects: a
// bbolt database file, Redis and an in-memory map.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"loam.dev/pkg/logutil"
	"loam.dev/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

// Buckets of the bbolt database.
const (
	bucketItems = "items"
)

// initDB holds steps run when opening a database, keyed by description.
var initDB = map[string]func(*bolt.Tx) error{}

// BoltStore is a Store backed by a bbolt database file.
type BoltStore struct {
	db *bolt.DB
}

var _ storedefs.Store = (*BoltStore)(nil)

// NewBoltStore opens the database file at path, creating it and its parent
// directory when needed.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info().Str("path", path).Msg("opened bolt store")
	return &BoltStore{db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
