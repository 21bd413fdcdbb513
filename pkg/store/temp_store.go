package store

import (
	"path/filepath"
	"testing"
)

// MustTempStore returns a BoltStore backed by a file in a temporary directory.
// The store is closed when the test finishes.
func MustTempStore(t testing.TB) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "loam.db"))
	if err != nil {
		t.Fatalf("failed to create temporary store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
