// Package immutable provides the copy-on-write container that holds all state
// owned by the runtime.
//
// A Value wraps a snapshot of some state S. It has no mutating methods:
// updates go through lenses and produce a new Value, leaving the original
// untouched. Lenses built with Index and Key copy the slice or map they
// update, so a Set through them never writes into storage shared with older
// snapshots. Record-like collections with many entries should use
// [loam.dev/pkg/persistent/hashmap] instead of Go maps, which gives the same
// guarantee with structural sharing.
package immutable

import "loam.dev/pkg/persistent/hashmap"

// Value is an immutable snapshot of a state of type S.
type Value[S any] struct {
	s S
}

// Of wraps s.
func Of[S any](s S) Value[S] { return Value[S]{s} }

// Get returns the wrapped state. Callers must treat the result, including
// anything reachable through pointers, slices and maps, as read-only.
func (v Value[S]) Get() S { return v.s }

// With returns a new Value holding f applied to the current state.
func (v Value[S]) With(f func(S) S) Value[S] { return Value[S]{f(v.s)} }

// Lens focuses on a part A of a whole S. Set must return a new S and not
// modify the one passed in.
type Lens[S, A any] struct {
	Get func(S) A
	Set func(S, A) S
}

// Set returns a new Value with the part focused by l replaced by a.
func Set[S, A any](v Value[S], l Lens[S, A], a A) Value[S] {
	return Value[S]{l.Set(v.s, a)}
}

// Update returns a new Value with f applied to the part focused by l.
func Update[S, A any](v Value[S], l Lens[S, A], f func(A) A) Value[S] {
	return Value[S]{l.Set(v.s, f(l.Get(v.s)))}
}

// View returns the part of v focused by l.
func View[S, A any](v Value[S], l Lens[S, A]) A {
	return l.Get(v.s)
}

// Identity is the lens focusing on the whole value.
func Identity[S any]() Lens[S, S] {
	return Lens[S, S]{
		Get: func(s S) S { return s },
		Set: func(_ S, s S) S { return s },
	}
}

// Compose chains two lenses.
func Compose[S, A, B any](outer Lens[S, A], inner Lens[A, B]) Lens[S, B] {
	return Lens[S, B]{
		Get: func(s S) B { return inner.Get(outer.Get(s)) },
		Set: func(s S, b B) S { return outer.Set(s, inner.Set(outer.Get(s), b)) },
	}
}

// Index focuses on element i of a slice. Setting copies the slice. Getting
// an out-of-range index yields the zero value; setting one panics.
func Index[T any](i int) Lens[[]T, T] {
	return Lens[[]T, T]{
		Get: func(s []T) T {
			if i < 0 || i >= len(s) {
				var zero T
				return zero
			}
			return s[i]
		},
		Set: func(s []T, t T) []T {
			newS := append([]T(nil), s...)
			newS[i] = t
			return newS
		},
	}
}

// Key focuses on the entry of a map with key k. Setting copies the map.
func Key[K comparable, V any](k K) Lens[map[K]V, V] {
	return Lens[map[K]V, V]{
		Get: func(m map[K]V) V { return m[k] },
		Set: func(m map[K]V, v V) map[K]V {
			newM := make(map[K]V, len(m)+1)
			for k, v := range m {
				newM[k] = v
			}
			newM[k] = v
			return newM
		},
	}
}

// Entry focuses on the entry of a persistent map with key k. Getting an
// absent key yields the zero value.
func Entry[K comparable, V any](k K) Lens[hashmap.Map[K, V], V] {
	return Lens[hashmap.Map[K, V], V]{
		Get: func(m hashmap.Map[K, V]) V {
			v, _ := m.Index(k)
			return v
		},
		Set: func(m hashmap.Map[K, V], v V) hashmap.Map[K, V] { return m.Assoc(k, v) },
	}
}
