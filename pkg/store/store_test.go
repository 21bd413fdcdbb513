package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"loam.dev/pkg/store"
	"loam.dev/pkg/store/storetest"
)

func TestBoltStore(t *testing.T) {
	st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "sub", "loam.db"))
	if err != nil {
		t.Fatal(err)
	}
	storetest.TestStore(t, st)
}

func TestBoltStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loam.db")
	st, err := store.NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SetItem(context.Background(), "k", "v"); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = store.NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if v, ok, err := st.GetItem(context.Background(), "k"); v != "v" || !ok || err != nil {
		t.Errorf("GetItem after reopening -> (%q, %v, %v), want (\"v\", true, nil)", v, ok, err)
	}
}

func TestBoltStore_ParentIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if st, err := store.NewBoltStore(filepath.Join(file, "loam.db")); err == nil {
		st.Close()
		t.Errorf("NewBoltStore under a regular file succeeded")
	}
}

func TestMemStore(t *testing.T) {
	storetest.TestStore(t, store.NewMemStore())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("LOAM_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LOAM_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	st, err := store.NewRedisStore(ctx, store.RedisOptions{
		Addr: addr, Prefix: "loam-test:" + t.Name() + ":"})
	if err != nil {
		t.Fatal(err)
	}
	storetest.TestStore(t, st)
}
