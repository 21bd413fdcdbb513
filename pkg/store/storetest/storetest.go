// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"context"
	"errors"
	"testing"

	"loam.dev/pkg/store/storedefs"
)

// TestStore runs the test suite against s. It closes s at the end.
func TestStore(t *testing.T, s storedefs.Store) {
	t.Helper()
	ctx := context.Background()

	if v, ok, err := s.GetItem(ctx, "flag"); ok || err != nil {
		t.Errorf("GetItem(flag) on empty store -> (%q, %v, %v), want (\"\", false, nil)", v, ok, err)
	}

	for _, value := range []string{"true", "", "false"} {
		if err := s.SetItem(ctx, "flag", value); err != nil {
			t.Errorf("SetItem(flag, %q) -> %v, want nil", value, err)
		}
		v, ok, err := s.GetItem(ctx, "flag")
		if v != value || !ok || err != nil {
			t.Errorf("GetItem(flag) -> (%q, %v, %v), want (%q, true, nil)", v, ok, err, value)
		}
	}

	if err := s.SetItem(ctx, "other", "x"); err != nil {
		t.Errorf("SetItem(other) -> %v", err)
	}
	if err := s.DelItem(ctx, "flag"); err != nil {
		t.Errorf("DelItem(flag) -> %v, want nil", err)
	}
	if _, ok, _ := s.GetItem(ctx, "flag"); ok {
		t.Errorf("GetItem(flag) after DelItem still finds the item")
	}
	if v, ok, _ := s.GetItem(ctx, "other"); v != "x" || !ok {
		t.Errorf("DelItem(flag) affected other item: (%q, %v)", v, ok)
	}
	if err := s.DelItem(ctx, "missing"); err != nil {
		t.Errorf("DelItem(missing) -> %v, want nil", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close -> %v", err)
	}
	if _, _, err := s.GetItem(ctx, "other"); !errors.Is(err, storedefs.ErrClosed) {
		t.Errorf("GetItem after Close -> %v, want ErrClosed", err)
	}
}
