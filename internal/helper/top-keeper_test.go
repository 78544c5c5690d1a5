package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopKeeperOrdering(t *testing.T) {
	tk := NewTopKeeper[int64, string](3)
	tk.Offer(10, "a")
	tk.Offer(30, "b")
	tk.Offer(20, "c")

	assert.Equal(t, 3, tk.Len())
	assert.Equal(t, []int64{30, 20, 10}, tk.Keys())
	assert.Equal(t, []string{"b", "c", "a"}, tk.Values())
}

func TestTopKeeperOverflowDropsSmallest(t *testing.T) {
	tk := NewTopKeeper[int64, string](2)
	tk.Offer(10, "a")
	tk.Offer(30, "b")
	tk.Offer(20, "c")
	tk.Offer(5, "d")

	assert.Equal(t, []int64{30, 20}, tk.Keys())
	assert.Equal(t, []string{"b", "c"}, tk.Values())
}

func TestTopKeeperNonPositiveLimit(t *testing.T) {
	tk := NewTopKeeper[int, string](0)
	tk.Offer(1, "a")
	tk.Offer(2, "b")

	assert.Equal(t, 1, tk.Len())
	assert.Equal(t, []string{"b"}, tk.Values())
}
