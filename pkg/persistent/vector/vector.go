// Package vector implements a persistent vector.
//
// This is a Go clone of Clojure's PersistentVector type
// (https://github.com/clojure/clojure/blob/master/src/jvm/clojure/lang/PersistentVector.java).
// For an introduction to the internals, see
// https://hypirion.com/musings/understanding-persistent-vector-pt-1.
package vector

import "iter"

const (
	chunkBits = 5
	nodeSize  = 1 << chunkBits
	chunkMask = nodeSize - 1
)

// Vector is a persistent sequence. It supports O(1) lookup by index,
// modification by index, and insertion and removal at the end. Operations
// return new vectors sharing structure with the old one, which is never
// modified, so a Vector can be shared between goroutines freely. The zero
// value is an empty vector.
type Vector[T any] struct {
	count int
	// height of the tree, 0 when root is a leaf.
	height uint
	root   *node[T]
	tail   []T
}

// Interior nodes use kids, leaves use elems.
type node[T any] struct {
	kids  [nodeSize]*node[T]
	elems [nodeSize]T
}

// Of returns a vector with the given elements.
func Of[T any](elems ...T) Vector[T] {
	var v Vector[T]
	for _, e := range elems {
		v = v.Conj(e)
	}
	return v
}

// Len returns the length of the vector.
func (v Vector[T]) Len() int { return v.count }

// Number of elements stored in the tree, as opposed to the tail.
func (v Vector[T]) treeSize() int {
	if v.count < nodeSize {
		return 0
	}
	return ((v.count - 1) >> chunkBits) << chunkBits
}

// Index returns the i-th element and whether it exists.
func (v Vector[T]) Index(i int) (T, bool) {
	if i < 0 || i >= v.count {
		var zero T
		return zero, false
	}
	return v.leafFor(i)[i&chunkMask], true
}

// Returns the slice the i-th element is stored in. The index must be in
// bound.
func (v Vector[T]) leafFor(i int) []T {
	if i >= v.treeSize() {
		return v.tail
	}
	n := v.root
	for shift := v.height * chunkBits; shift > 0; shift -= chunkBits {
		n = n.kids[(i>>shift)&chunkMask]
	}
	return n.elems[:]
}

// Assoc returns a vector with the i-th element replaced. If i is equal to the
// length, it is equivalent to Conj. Other indices out of range leave the
// vector as is and return false.
func (v Vector[T]) Assoc(i int, val T) (Vector[T], bool) {
	switch {
	case i < 0 || i > v.count:
		return v, false
	case i == v.count:
		return v.Conj(val), true
	case i >= v.treeSize():
		tail := append([]T(nil), v.tail...)
		tail[i&chunkMask] = val
		return Vector[T]{v.count, v.height, v.root, tail}, true
	}
	return Vector[T]{v.count, v.height, assoc(v.height, v.root, i, val), v.tail}, true
}

func assoc[T any](height uint, n *node[T], i int, val T) *node[T] {
	m := *n
	if height == 0 {
		m.elems[i&chunkMask] = val
	} else {
		sub := (i >> (height * chunkBits)) & chunkMask
		m.kids[sub] = assoc(height-1, n.kids[sub], i, val)
	}
	return &m
}

// Conj returns a vector with val appended.
func (v Vector[T]) Conj(val T) Vector[T] {
	if v.count-v.treeSize() < nodeSize {
		tail := make([]T, len(v.tail)+1)
		copy(tail, v.tail)
		tail[len(v.tail)] = val
		return Vector[T]{v.count + 1, v.height, v.root, tail}
	}
	// Full tail; push into tree.
	leaf := &node[T]{}
	copy(leaf.elems[:], v.tail)
	height := v.height
	var root *node[T]
	if (v.count >> chunkBits) > (1 << (v.height * chunkBits)) {
		// Root overflow.
		root = &node[T]{}
		root.kids[0] = v.root
		root.kids[1] = newPath(v.height, leaf)
		height++
	} else {
		root = v.pushTail(v.height, v.root, leaf)
	}
	return Vector[T]{v.count + 1, height, root, []T{val}}
}

func (v Vector[T]) pushTail(height uint, n, leaf *node[T]) *node[T] {
	if height == 0 {
		return leaf
	}
	idx := ((v.count - 1) >> (height * chunkBits)) & chunkMask
	m := *n
	if child := n.kids[idx]; child == nil {
		m.kids[idx] = newPath(height-1, leaf)
	} else {
		m.kids[idx] = v.pushTail(height-1, child, leaf)
	}
	return &m
}

// Left-branching tree of the given height ending in leaf.
func newPath[T any](height uint, leaf *node[T]) *node[T] {
	if height == 0 {
		return leaf
	}
	n := &node[T]{}
	n.kids[0] = newPath(height-1, leaf)
	return n
}

// Pop returns a vector with the last element removed. It returns false if
// the vector is empty.
func (v Vector[T]) Pop() (Vector[T], bool) {
	switch v.count {
	case 0:
		return v, false
	case 1:
		return Vector[T]{}, true
	}
	if v.count-v.treeSize() > 1 {
		tail := make([]T, len(v.tail)-1)
		copy(tail, v.tail)
		return Vector[T]{v.count - 1, v.height, v.root, tail}, true
	}
	tail := v.leafFor(v.count - 2)
	root := v.popTail(v.height, v.root)
	height := v.height
	if height > 0 && root.kids[1] == nil {
		root = root.kids[0]
		height--
	}
	return Vector[T]{v.count - 1, height, root, tail}, true
}

// Returns the tree with the last leaf removed, or nil if nothing is left.
func (v Vector[T]) popTail(level uint, n *node[T]) *node[T] {
	idx := ((v.count - 2) >> (level * chunkBits)) & chunkMask
	switch {
	case level == 0:
		return nil
	case level > 1:
		child := v.popTail(level-1, n.kids[idx])
		if child == nil && idx == 0 {
			return nil
		}
		m := *n
		m.kids[idx] = child
		return &m
	case idx == 0:
		return nil
	default:
		m := *n
		m.kids[idx] = nil
		return &m
	}
}

// Last returns the last element and whether the vector is non-empty.
func (v Vector[T]) Last() (T, bool) { return v.Index(v.count - 1) }

// All iterates over the elements in order.
func (v Vector[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.count; i += nodeSize {
			for _, e := range v.leafFor(i)[:min(nodeSize, v.count-i)] {
				if !yield(e) {
					return
				}
			}
		}
	}
}
