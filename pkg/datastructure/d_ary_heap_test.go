package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lessRank(a, b *PriorityQueueNode[string, float64]) bool {
	return a.GetRank() < b.GetRank()
}

func TestMinHeapExtractOrder(t *testing.T) {
	testCases := []struct {
		name  string
		d     int
		ranks []float64
	}{
		{name: "binary", d: 2, ranks: []float64{5, 3, 8, 1, 9, 2, 7}},
		{name: "four-ary", d: 4, ranks: []float64{10, 4, 4, 0, 6, 12, 3, 1, 8}},
		{name: "single", d: 4, ranks: []float64{42}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			h := NewdAryHeap[string, float64](tt.d, lessRank)
			for _, r := range tt.ranks {
				h.Insert(NewPriorityQueueNode(r, "x"))
			}
			require.Equal(t, len(tt.ranks), h.Size())

			prev := -1.0
			for !h.IsEmpty() {
				n, err := h.ExtractMin()
				require.NoError(t, err)
				assert.GreaterOrEqual(t, n.GetRank(), prev)
				assert.False(t, n.InHeap())
				prev = n.GetRank()
			}
		})
	}
}

func TestMinHeapDecreaseKey(t *testing.T) {
	h := NewFourAryHeap[string, float64](lessRank)
	a := NewPriorityQueueNode(5.0, "a")
	b := NewPriorityQueueNode(3.0, "b")
	c := NewPriorityQueueNode(8.0, "c")
	h.Insert(a)
	h.Insert(b)
	h.Insert(c)

	require.NoError(t, h.DecreaseKey(c, 1))
	min, err := h.GetMin()
	require.NoError(t, err)
	assert.Equal(t, "c", min.GetItem())

	assert.Error(t, h.DecreaseKey(a, 6), "increasing a rank is rejected")
	assert.Equal(t, 5.0, a.GetRank())

	n, _ := h.ExtractMin()
	assert.Error(t, h.DecreaseKey(n, 0), "extracted node is not in the heap")
}

func TestMinHeapEmpty(t *testing.T) {
	h := NewBinaryHeap[string, float64](lessRank)
	_, err := h.ExtractMin()
	assert.ErrorIs(t, err, ErrHeapEmpty)
	_, err = h.GetMin()
	assert.ErrorIs(t, err, ErrHeapEmpty)
}
