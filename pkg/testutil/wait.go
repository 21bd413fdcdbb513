package testutil

import "time"

// WaitFor polls cond until it returns true, failing the test if that does not
// happen within the scaled timeout.
func WaitFor(t Fataler, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(Scaled(timeout))
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// Recover calls f and returns what it panicked with, or nil.
func Recover(f func()) (r any) {
	defer func() { r = recover() }()
	f()
	return nil
}
