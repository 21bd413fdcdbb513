// Package testutil contains helpers shared by tests.
package testutil

// Fataler wraps the Helper and Fatalf methods of [testing.TB].
type Fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}
