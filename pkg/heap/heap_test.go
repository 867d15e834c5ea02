package heap

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
)

type entry struct {
	id       int
	priority int
}

func newEntryHeap() *IndexedMinHeap[*entry, int] {
	return New(
		func(a, b *entry) bool { return a.priority < b.priority },
		func(e *entry) int { return e.id },
	)
}

func TestIndexedMinHeap(t *testing.T) {
	h := newEntryHeap()

	a := &entry{id: 1, priority: 30}
	b := &entry{id: 2, priority: 10}
	c := &entry{id: 3, priority: 20}
	h.Insert(a)
	h.Insert(b)
	h.Insert(c)

	top, err := h.PeekMin()
	if err != nil || top != b {
		t.Fatalf("PeekMin = %v, %v; want id 2", top, err)
	}

	for _, want := range []int{2, 3, 1} {
		got, err := h.ExtractMin()
		if err != nil {
			t.Fatalf("ExtractMin: %v", err)
		}
		if got.id != want {
			t.Errorf("ExtractMin id = %d, want %d", got.id, want)
		}
		if h.Contains(got) {
			t.Errorf("Contains(%d) after extraction", got.id)
		}
	}

	if h.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.Len())
	}
}

func TestEmptyQueue(t *testing.T) {
	h := newEntryHeap()
	if _, err := h.PeekMin(); !errors.Is(err, ErrEmptyQueue) {
		t.Errorf("PeekMin err = %v, want ErrEmptyQueue", err)
	}
	if _, err := h.ExtractMin(); !errors.Is(err, ErrEmptyQueue) {
		t.Errorf("ExtractMin err = %v, want ErrEmptyQueue", err)
	}
}

func TestReprioritize(t *testing.T) {
	h := newEntryHeap()
	entries := make([]*entry, 10)
	for i := range entries {
		entries[i] = &entry{id: i, priority: 100 + i}
		h.Insert(entries[i])
	}

	// Lower the key of the last element below everything else.
	entries[9].priority = 1
	h.Reprioritize(entries[9])

	got, _ := h.ExtractMin()
	if got.id != 9 {
		t.Fatalf("after lowering key, ExtractMin id = %d, want 9", got.id)
	}

	// Raise the key of the current minimum.
	entries[0].priority = 1000
	h.Reprioritize(entries[0])
	got, _ = h.ExtractMin()
	if got.id != 1 {
		t.Fatalf("after raising key, ExtractMin id = %d, want 1", got.id)
	}

	// Reprioritizing an absent element is a no-op.
	h.Reprioritize(&entry{id: 42, priority: 0})
	if h.Len() != 8 {
		t.Errorf("Len = %d, want 8", h.Len())
	}
}

func TestClear(t *testing.T) {
	h := newEntryHeap()
	a := &entry{id: 1, priority: 5}
	b := &entry{id: 2, priority: 6}
	h.Insert(a)
	h.Insert(b)
	h.Clear()

	if h.Len() != 0 {
		t.Fatalf("Len after Clear = %d", h.Len())
	}
	if h.Contains(a) || h.Contains(b) {
		t.Fatal("Contains reports element after Clear")
	}

	// Stale index entries must not confuse later inserts.
	c := &entry{id: 3, priority: 1}
	h.Insert(c)
	if h.Contains(b) {
		t.Error("Contains(b) true after Clear and unrelated Insert")
	}
	b.priority = 0
	h.Reprioritize(b) // absent, must not touch c's slot
	got, _ := h.ExtractMin()
	if got != c {
		t.Errorf("ExtractMin = %d, want 3", got.id)
	}
}

func TestHeapOrderRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := newEntryHeap()
	live := map[int]*entry{}
	next := 0

	for step := 0; step < 5000; step++ {
		switch op := rng.Intn(4); {
		case op < 2:
			e := &entry{id: next, priority: rng.Intn(1000)}
			next++
			h.Insert(e)
			live[e.id] = e
		case op == 2 && len(live) > 0:
			for _, e := range live {
				e.priority -= rng.Intn(50)
				h.Reprioritize(e)
				break
			}
		default:
			if h.Len() == 0 {
				continue
			}
			got, err := h.ExtractMin()
			if err != nil {
				t.Fatalf("ExtractMin: %v", err)
			}
			for _, e := range live {
				if e.priority < got.priority {
					t.Fatalf("extracted priority %d while %d is queued", got.priority, e.priority)
				}
			}
			delete(live, got.id)
		}
		if h.Len() != len(live) {
			t.Fatalf("Len = %d, want %d", h.Len(), len(live))
		}
	}

	prev := -1 << 31
	for h.Len() > 0 {
		got, _ := h.ExtractMin()
		if got.priority < prev {
			t.Fatalf("non-monotonic drain: %d after %d", got.priority, prev)
		}
		prev = got.priority
	}
}
