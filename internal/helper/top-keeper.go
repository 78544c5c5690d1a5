package helper

import (
	"cmp"
	"slices"
)

// TopKeeper keeps the limit biggest keys (with their values) seen so far,
// sorted in descending key order.
type TopKeeper[K cmp.Ordered, V any] struct {
	limit  int
	keys   []K
	values []V
}

func NewTopKeeper[K cmp.Ordered, V any](limit int) *TopKeeper[K, V] {
	if limit <= 0 {
		limit = 1
	}

	return &TopKeeper[K, V]{
		limit:  limit,
		keys:   make([]K, 0, limit),
		values: make([]V, 0, limit),
	}
}

func (t *TopKeeper[K, V]) Len() int {
	return len(t.keys)
}

// Offer inserts key, value to the appropriate position. When the keeper is
// full and key is not bigger than the current smallest key the pair is dropped.
func (t *TopKeeper[K, V]) Offer(key K, value V) {
	n, _ := slices.BinarySearchFunc(t.keys, key, func(a, b K) int {
		return cmp.Compare(b, a)
	})
	if n >= t.limit {
		return
	}

	if len(t.keys) < t.limit {
		var zeroK K
		var zeroV V
		t.keys = append(t.keys, zeroK)
		t.values = append(t.values, zeroV)
	}

	copy(t.keys[n+1:], t.keys[n:])
	copy(t.values[n+1:], t.values[n:])
	t.keys[n], t.values[n] = key, value
}

func (t *TopKeeper[K, V]) Keys() []K {
	return t.keys
}

func (t *TopKeeper[K, V]) Values() []V {
	return t.values
}
