package heap

import "github.com/pkg/errors"

// ErrEmptyQueue is returned by PeekMin and ExtractMin on an empty heap.
var ErrEmptyQueue = errors.New("heap: empty queue")

// IndexedMinHeap is a binary min-heap that tracks the array index of every
// element by identity key, so membership is O(1) and an element whose ordering
// key was mutated in place can be re-sifted without removal.
//
// Ordering is fully delegated to less; the heap adds no tie-breaking of its own.
type IndexedMinHeap[T any, K comparable] struct {
	items []T
	index map[K]int // key -> position in items; may hold stale entries after Clear
	less  func(a, b T) bool
	key   func(T) K
}

// New creates an empty heap ordered by less, with element identity given by key.
func New[T any, K comparable](less func(a, b T) bool, key func(T) K) *IndexedMinHeap[T, K] {
	return &IndexedMinHeap[T, K]{
		items: make([]T, 0, 256),
		index: make(map[K]int, 256),
		less:  less,
		key:   key,
	}
}

// Len returns the number of queued items.
func (h *IndexedMinHeap[T, K]) Len() int { return len(h.items) }

// Insert adds item and records its position.
func (h *IndexedMinHeap[T, K]) Insert(item T) {
	h.items = append(h.items, item)
	i := len(h.items) - 1
	h.index[h.key(item)] = i
	h.siftUp(i)
}

// PeekMin returns the root without removing it.
func (h *IndexedMinHeap[T, K]) PeekMin() (T, error) {
	if len(h.items) == 0 {
		var zero T
		return zero, ErrEmptyQueue
	}
	return h.items[0], nil
}

// ExtractMin removes and returns the root.
func (h *IndexedMinHeap[T, K]) ExtractMin() (T, error) {
	n := len(h.items)
	if n == 0 {
		var zero T
		return zero, ErrEmptyQueue
	}
	item := h.items[0]
	last := h.items[n-1]
	var zero T
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	delete(h.index, h.key(item))
	if n > 1 {
		h.items[0] = last
		h.index[h.key(last)] = 0
		h.siftDown(0)
	}
	return item, nil
}

// Contains reports whether an element with item's identity is queued.
func (h *IndexedMinHeap[T, K]) Contains(item T) bool {
	_, ok := h.position(h.key(item))
	return ok
}

// Reprioritize restores heap order after item's ordering key changed in place.
// It is a no-op if item is not queued.
func (h *IndexedMinHeap[T, K]) Reprioritize(item T) {
	i, ok := h.position(h.key(item))
	if !ok {
		return
	}
	h.items[i] = item
	if !h.siftUp(i) {
		h.siftDown(i)
	}
}

// Clear drops all elements in O(1). The backing array and index map are kept
// for reuse; leftover index entries are rejected by position.
func (h *IndexedMinHeap[T, K]) Clear() {
	h.items = h.items[:0]
}

// position looks up k and verifies the recorded slot still holds k.
func (h *IndexedMinHeap[T, K]) position(k K) (int, bool) {
	i, ok := h.index[k]
	if !ok || i >= len(h.items) || h.key(h.items[i]) != k {
		return 0, false
	}
	return i, true
}

func (h *IndexedMinHeap[T, K]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.key(h.items[i])] = i
	h.index[h.key(h.items[j])] = j
}

// siftUp reports whether the element moved.
func (h *IndexedMinHeap[T, K]) siftUp(i int) bool {
	start := i
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.items[i], h.items[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
	return i != start
}

func (h *IndexedMinHeap[T, K]) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.less(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < n && h.less(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
}
