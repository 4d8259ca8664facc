package datastructure

import (
	"errors"
)

var ErrHeapEmpty = errors.New("heap is empty")

type PriorityQueueNode[T any, R any] struct {
	rank    R
	item    T
	itemPos int
}

func (p *PriorityQueueNode[T, R]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[T, R]) GetRank() R {
	return p.rank
}

func (p *PriorityQueueNode[T, R]) SetRank(rank R) {
	p.rank = rank
}
func (p *PriorityQueueNode[T, R]) SetPos(i int) {
	p.itemPos = i
}

func (p *PriorityQueueNode[T, R]) GetPos() int {
	return p.itemPos
}

// InHeap reports whether the node is currently stored in a heap.
func (p *PriorityQueueNode[T, R]) InHeap() bool {
	return p.itemPos >= 0
}

func NewPriorityQueueNode[T any, R any](rank R, item T) *PriorityQueueNode[T, R] {
	return &PriorityQueueNode[T, R]{rank: rank, item: item, itemPos: -1}
}

// MinHeap d-ary heap priorityqueue ordered by less on the node ranks.
type MinHeap[T any, R any] struct {
	heap []*PriorityQueueNode[T, R]
	d    int
	less func(a, b *PriorityQueueNode[T, R]) bool
}

func NewBinaryHeap[T any, R any](less func(a, b *PriorityQueueNode[T, R]) bool) *MinHeap[T, R] {
	return NewdAryHeap[T, R](2, less)
}

func NewFourAryHeap[T any, R any](less func(a, b *PriorityQueueNode[T, R]) bool) *MinHeap[T, R] {
	return NewdAryHeap[T, R](4, less)
}

func NewdAryHeap[T any, R any](d int, less func(a, b *PriorityQueueNode[T, R]) bool) *MinHeap[T, R] {
	if d < 2 {
		d = 2
	}
	return &MinHeap[T, R]{
		heap: make([]*PriorityQueueNode[T, R], 0),
		d:    d,
		less: less,
	}
}

func (h *MinHeap[T, R]) Preallocate(maxSearchSize int) {
	h.heap = make([]*PriorityQueueNode[T, R], 0, maxSearchSize)
}

// parent index of the parent of index
func (h *MinHeap[T, R]) parent(index int) int {
	return (index - 1) / h.d
}

// heapifyUp swaps index with its parent while it ranks lower. O(logN) tree height.
func (h *MinHeap[T, R]) heapifyUp(index int) {
	for index != 0 && h.less(h.heap[index], h.heap[h.parent(index)]) {
		h.Swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown swaps index with its smallest child while that child ranks lower. O(logN) tree height.
func (h *MinHeap[T, R]) heapifyDown(index int) {
	for {
		leftMostChild := index*h.d + 1
		if leftMostChild >= len(h.heap) {
			return
		}

		sentinel := leftMostChild + h.d
		if sentinel > len(h.heap) {
			sentinel = len(h.heap)
		}

		smallest := leftMostChild
		for i := leftMostChild + 1; i < sentinel; i++ {
			if h.less(h.heap[i], h.heap[smallest]) {
				smallest = i
			}
		}

		if !h.less(h.heap[smallest], h.heap[index]) {
			return
		}
		h.Swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T, R]) Swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]

	h.heap[i].SetPos(i)
	h.heap[j].SetPos(j)
}

func (h *MinHeap[T, R]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T, R]) Size() int {
	return len(h.heap)
}

// GetMin returns the minimum (index 0) without removing it.
func (h *MinHeap[T, R]) GetMin() (*PriorityQueueNode[T, R], error) {
	if h.IsEmpty() {
		return nil, ErrHeapEmpty
	}
	return h.heap[0], nil
}

func (h *MinHeap[T, R]) Insert(key *PriorityQueueNode[T, R]) {
	h.heap = append(h.heap, key)
	index := h.Size() - 1
	key.SetPos(index)
	h.heapifyUp(index)
}

// ExtractMin pops the minimum (index 0). O(logN)
func (h *MinHeap[T, R]) ExtractMin() (*PriorityQueueNode[T, R], error) {
	if h.IsEmpty() {
		return nil, ErrHeapEmpty
	}
	root := h.heap[0]

	h.Swap(0, h.Size()-1)

	h.heap = h.heap[:h.Size()-1]
	root.SetPos(-1)
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}

	return root, nil
}

// DecreaseKey lowers the rank of an item already in the heap. O(logN)
func (h *MinHeap[T, R]) DecreaseKey(item *PriorityQueueNode[T, R], rank R) error {
	itemPos := item.GetPos()
	if itemPos < 0 || itemPos >= h.Size() || h.heap[itemPos] != item {
		return errors.New("invalid index or new value")
	}
	old := item.rank
	item.SetRank(rank)
	if h.less(&PriorityQueueNode[T, R]{rank: old, item: item.item}, item) {
		item.SetRank(old)
		return errors.New("invalid index or new value")
	}
	h.heapifyUp(itemPos)
	return nil
}
