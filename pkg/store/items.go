package store

import (
	"context"
	"errors"

	bolt "go.etcd.io/bbolt"
	"loam.dev/pkg/store/storedefs"
)

func init() {
	initDB["initialize item table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketItems))
		return err
	}
}

// GetItem gets the value of an item.
func (s *BoltStore) GetItem(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketItems))
		if v := b.Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	return value, found, boltErr(err)
}

// SetItem sets the value of an item.
func (s *BoltStore) SetItem(_ context.Context, key, value string) error {
	return boltErr(s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketItems))
		return b.Put([]byte(key), []byte(value))
	}))
}

// DelItem deletes an item.
func (s *BoltStore) DelItem(_ context.Context, key string) error {
	return boltErr(s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketItems))
		return b.Delete([]byte(key))
	}))
}

func boltErr(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return storedefs.ErrClosed
	}
	return err
}
