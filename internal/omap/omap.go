// Package omap wraps a persistent, key-ordered B-tree into the minimal
// shape the store needs: point get/set/delete, an O(1) structurally-shared
// clone, and half-open ascending range scans.
package omap

import (
	"cmp"

	"github.com/tidwall/btree"
)

// entry is the item type stored in the underlying tree. The tree only ever
// compares entries by Key, so Val rides along unordered.
type entry[K cmp.Ordered, V any] struct {
	Key K
	Val V
}

func less[K cmp.Ordered, V any](a, b entry[K, V]) bool {
	return a.Key < b.Key
}

// Map is an immutable-by-convention, key-ordered map. Callers never mutate a
// Map that another goroutine may still be reading; Copy() before mutating a
// shared instance.
type Map[K cmp.Ordered, V any] struct {
	tr *btree.BTreeG[entry[K, V]]
}

// New returns an empty Map.
func New[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{tr: btree.NewBTreeG(less[K, V])}
}

// Copy returns a clone of m that shares unmodified nodes with m. It is the
// structural-sharing operation that makes Database.Begin cheap: callers get
// their own logical map without copying the whole tree.
func (m *Map[K, V]) Copy() *Map[K, V] {
	return &Map[K, V]{tr: m.tr.Copy()}
}

// Get returns the value stored at key, if any.
func (m *Map[K, V]) Get(key K) (V, bool) {
	e, ok := m.tr.Get(entry[K, V]{Key: key})
	return e.Val, ok
}

// Set inserts or overwrites the value at key.
func (m *Map[K, V]) Set(key K, val V) {
	m.tr.Set(entry[K, V]{Key: key, Val: val})
}

// Delete removes key. A missing key is a no-op.
func (m *Map[K, V]) Delete(key K) {
	m.tr.Delete(entry[K, V]{Key: key})
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.tr.Len()
}

// Keys returns up to limit keys in the half-open range [lo, hi), in
// ascending order. An empty or inverted range (lo >= hi) yields nil.
func (m *Map[K, V]) Keys(lo, hi K, limit int) []K {
	if !(lo < hi) || limit <= 0 {
		return nil
	}
	keys := make([]K, 0, minInt(limit, m.tr.Len()))
	m.tr.Ascend(entry[K, V]{Key: lo}, func(e entry[K, V]) bool {
		if !(e.Key < hi) {
			return false
		}
		keys = append(keys, e.Key)
		return len(keys) < limit
	})
	return keys
}

// Pair is a single key-value result from Scan.
type Pair[K cmp.Ordered, V any] struct {
	Key K
	Val V
}

// Scan returns up to limit (key, value) pairs in the half-open range
// [lo, hi), in ascending order. An empty or inverted range yields nil.
func (m *Map[K, V]) Scan(lo, hi K, limit int) []Pair[K, V] {
	if !(lo < hi) || limit <= 0 {
		return nil
	}
	pairs := make([]Pair[K, V], 0, minInt(limit, m.tr.Len()))
	m.tr.Ascend(entry[K, V]{Key: lo}, func(e entry[K, V]) bool {
		if !(e.Key < hi) {
			return false
		}
		pairs = append(pairs, Pair[K, V]{Key: e.Key, Val: e.Val})
		return len(pairs) < limit
	})
	return pairs
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
