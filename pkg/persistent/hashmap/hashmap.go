// Package hashmap implements a persistent hash array mapped trie.
package hashmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"loam.dev/pkg/persistent/hash"
)

const (
	chunkBits = 5
	nodeCap   = 1 << chunkBits
	chunkMask = nodeCap - 1
)

// Map is a persistent associative data structure mapping keys to values. It
// is immutable, and supports near-O(1) operations to create modified versions
// of the map that share the underlying data structure. Because it is
// immutable, all of its methods are safe for concurrent use.
//
// The zero value is not usable; create maps with New or Strings.
type Map[K comparable, V any] struct {
	count  int
	root   node[K, V]
	hasher func(K) uint32
}

// New returns an empty map using the given hash function for keys.
func New[K comparable, V any](hasher func(K) uint32) Map[K, V] {
	return Map[K, V]{hasher: hasher}
}

// Strings returns an empty map with string keys.
func Strings[V any]() Map[string, V] {
	return New[string, V](hash.String)
}

// Len returns the number of entries in the map.
func (m Map[K, V]) Len() int { return m.count }

// Index returns the value associated with k, and whether there is one.
func (m Map[K, V]) Index(k K) (V, bool) {
	if m.root == nil {
		var zero V
		return zero, false
	}
	return m.root.find(0, m.hasher(k), k)
}

// HasKey reports whether the map has the given key.
func (m Map[K, V]) HasKey(k K) bool {
	_, ok := m.Index(k)
	return ok
}

// Assoc returns an almost identical map, with k associated with v.
func (m Map[K, V]) Assoc(k K, v V) Map[K, V] {
	root := m.root
	if root == nil {
		root = &bitmapNode[K, V]{}
	}
	newRoot, added := root.assoc(0, m.hasher(k), k, v)
	count := m.count
	if added {
		count++
	}
	return Map[K, V]{count, newRoot, m.hasher}
}

// Dissoc returns an almost identical map, with k associated with no value.
func (m Map[K, V]) Dissoc(k K) Map[K, V] {
	if m.root == nil {
		return m
	}
	newRoot, removed := m.root.without(0, m.hasher(k), k)
	if !removed {
		return m
	}
	return Map[K, V]{m.count - 1, newRoot, m.hasher}
}

// All returns an iterator over all entries. The order is determined by the
// hashes of the keys and is stable for a given map.
func (m Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m.root != nil {
			m.root.each(yield)
		}
	}
}

// Keys returns all the keys in iteration order.
func (m Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.count)
	for k := range m.All() {
		keys = append(keys, k)
	}
	return keys
}

// MarshalJSON encodes the map as a JSON object, formatting keys with
// fmt.Sprint.
func (m Map[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	for k, v := range m.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		var kBytes, vBytes []byte
		kBytes, err = json.Marshal(fmt.Sprint(k))
		if err != nil {
			break
		}
		vBytes, err = json.Marshal(v)
		if err != nil {
			err = fmt.Errorf("key %v: %w", k, err)
			break
		}
		buf.Write(kBytes)
		buf.WriteByte(':')
		buf.Write(vBytes)
	}
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// node is an interface for all nodes in the trie. A nil node is an empty
// subtree.
type node[K comparable, V any] interface {
	// assoc adds a new pair of key and value. It returns the new node, and
	// whether the key did not exist before.
	assoc(shift, hash uint32, k K, v V) (node[K, V], bool)
	// without removes a key. It returns the new node, which is nil when the
	// subtree becomes empty, and whether the key was indeed removed.
	without(shift, hash uint32, k K) (node[K, V], bool)
	// find finds the value for a key.
	find(shift, hash uint32, k K) (V, bool)
	// each calls yield on every entry, stopping when it returns false.
	each(yield func(K, V) bool) bool
}

// entry is either a leaf (child == nil) or a pointer to a subtree.
type entry[K comparable, V any] struct {
	hash  uint32
	key   K
	value V
	child node[K, V]
}

func chunk(shift, hash uint32) uint32 {
	return (hash >> shift) & chunkMask
}

func bitpos(shift, hash uint32) uint32 {
	return 1 << chunk(shift, hash)
}

func index(bitmap, bit uint32) uint32 {
	return popCount(bitmap & (bit - 1))
}

const (
	m1  uint32 = 0x55555555
	m2         = 0x33333333
	m4         = 0x0f0f0f0f
	m8         = 0x00ff00ff
	m16        = 0x0000ffff
)

func popCount(u uint32) uint32 {
	u = (u & m1) + ((u >> 1) & m1)
	u = (u & m2) + ((u >> 2) & m2)
	u = (u & m4) + ((u >> 4) & m4)
	u = (u & m8) + ((u >> 8) & m8)
	u = (u & m16) + ((u >> 16) & m16)
	return u
}

type bitmapNode[K comparable, V any] struct {
	bitmap  uint32
	entries []entry[K, V]
}

func createNode[K comparable, V any](shift uint32, e1, e2 entry[K, V]) node[K, V] {
	if e1.hash == e2.hash {
		return &collisionNode[K, V]{e1.hash, []entry[K, V]{e1, e2}}
	}
	var n node[K, V] = &bitmapNode[K, V]{}
	n, _ = n.assoc(shift, e1.hash, e1.key, e1.value)
	n, _ = n.assoc(shift, e2.hash, e2.key, e2.value)
	return n
}

// singleLeaf returns the only leaf of n, if n holds exactly one leaf and
// nothing else. Such subtrees are inlined into their parent.
func singleLeaf[K comparable, V any](n node[K, V]) (entry[K, V], bool) {
	switch n := n.(type) {
	case *bitmapNode[K, V]:
		if len(n.entries) == 1 && n.entries[0].child == nil {
			return n.entries[0], true
		}
	case *collisionNode[K, V]:
		if len(n.entries) == 1 {
			return n.entries[0], true
		}
	}
	return entry[K, V]{}, false
}

func (n *bitmapNode[K, V]) withReplacedEntry(i uint32, e entry[K, V]) *bitmapNode[K, V] {
	newEntries := append([]entry[K, V](nil), n.entries...)
	newEntries[i] = e
	return &bitmapNode[K, V]{n.bitmap, newEntries}
}

func (n *bitmapNode[K, V]) withoutEntry(bit, idx uint32) *bitmapNode[K, V] {
	return &bitmapNode[K, V]{n.bitmap ^ bit, withoutEntry(n.entries, idx)}
}

func withoutEntry[K comparable, V any](entries []entry[K, V], idx uint32) []entry[K, V] {
	newEntries := make([]entry[K, V], len(entries)-1)
	copy(newEntries[:idx], entries[:idx])
	copy(newEntries[idx:], entries[idx+1:])
	return newEntries
}

func (n *bitmapNode[K, V]) assoc(shift, hash uint32, k K, v V) (node[K, V], bool) {
	bit := bitpos(shift, hash)
	idx := index(n.bitmap, bit)
	if n.bitmap&bit == 0 {
		newEntries := make([]entry[K, V], len(n.entries)+1)
		copy(newEntries[:idx], n.entries[:idx])
		newEntries[idx] = entry[K, V]{hash: hash, key: k, value: v}
		copy(newEntries[idx+1:], n.entries[idx:])
		return &bitmapNode[K, V]{n.bitmap | bit, newEntries}, true
	}
	e := n.entries[idx]
	if e.child != nil {
		newChild, added := e.child.assoc(shift+chunkBits, hash, k, v)
		return n.withReplacedEntry(idx, entry[K, V]{child: newChild}), added
	}
	if e.key == k {
		return n.withReplacedEntry(idx, entry[K, V]{hash: hash, key: k, value: v}), false
	}
	newChild := createNode(shift+chunkBits, e, entry[K, V]{hash: hash, key: k, value: v})
	return n.withReplacedEntry(idx, entry[K, V]{child: newChild}), true
}

func (n *bitmapNode[K, V]) without(shift, hash uint32, k K) (node[K, V], bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		return n, false
	}
	idx := index(n.bitmap, bit)
	e := n.entries[idx]
	if e.child != nil {
		newChild, removed := e.child.without(shift+chunkBits, hash, k)
		if !removed {
			return n, false
		}
		if newChild == nil {
			if n.bitmap == bit {
				return nil, true
			}
			return n.withoutEntry(bit, idx), true
		}
		if leaf, ok := singleLeaf(newChild); ok {
			return n.withReplacedEntry(idx, leaf), true
		}
		return n.withReplacedEntry(idx, entry[K, V]{child: newChild}), true
	}
	if e.key != k {
		return n, false
	}
	if n.bitmap == bit {
		return nil, true
	}
	return n.withoutEntry(bit, idx), true
}

func (n *bitmapNode[K, V]) find(shift, hash uint32, k K) (V, bool) {
	bit := bitpos(shift, hash)
	if n.bitmap&bit == 0 {
		var zero V
		return zero, false
	}
	e := n.entries[index(n.bitmap, bit)]
	if e.child != nil {
		return e.child.find(shift+chunkBits, hash, k)
	}
	if e.key == k {
		return e.value, true
	}
	var zero V
	return zero, false
}

func (n *bitmapNode[K, V]) each(yield func(K, V) bool) bool {
	for _, e := range n.entries {
		if e.child != nil {
			if !e.child.each(yield) {
				return false
			}
		} else if !yield(e.key, e.value) {
			return false
		}
	}
	return true
}

// collisionNode holds entries whose keys have the same full hash.
type collisionNode[K comparable, V any] struct {
	hash    uint32
	entries []entry[K, V]
}

func (n *collisionNode[K, V]) assoc(shift, hash uint32, k K, v V) (node[K, V], bool) {
	if hash == n.hash {
		newEntry := entry[K, V]{hash: hash, key: k, value: v}
		if idx := n.findIndex(k); idx != -1 {
			newEntries := append([]entry[K, V](nil), n.entries...)
			newEntries[idx] = newEntry
			return &collisionNode[K, V]{n.hash, newEntries}, false
		}
		newEntries := make([]entry[K, V], len(n.entries)+1)
		copy(newEntries, n.entries)
		newEntries[len(n.entries)] = newEntry
		return &collisionNode[K, V]{n.hash, newEntries}, true
	}
	// Wrap in a bitmapNode and add the entry.
	wrap := bitmapNode[K, V]{bitpos(shift, n.hash), []entry[K, V]{{child: n}}}
	return wrap.assoc(shift, hash, k, v)
}

func (n *collisionNode[K, V]) without(shift, hash uint32, k K) (node[K, V], bool) {
	idx := n.findIndex(k)
	if idx == -1 {
		return n, false
	}
	if len(n.entries) == 1 {
		return nil, true
	}
	return &collisionNode[K, V]{n.hash, withoutEntry(n.entries, uint32(idx))}, true
}

func (n *collisionNode[K, V]) find(shift, hash uint32, k K) (V, bool) {
	if idx := n.findIndex(k); idx != -1 {
		return n.entries[idx].value, true
	}
	var zero V
	return zero, false
}

func (n *collisionNode[K, V]) findIndex(k K) int {
	for i, e := range n.entries {
		if e.key == k {
			return i
		}
	}
	return -1
}

func (n *collisionNode[K, V]) each(yield func(K, V) bool) bool {
	for _, e := range n.entries {
		if !yield(e.key, e.value) {
			return false
		}
	}
	return true
}
