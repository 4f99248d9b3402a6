package dstructs

import "sync"

// Rolling is a fixed-capacity FIFO buffer that is thread-safe. Once full, every
// Append evicts the oldest element.
type Rolling[T any] struct {
	mu    sync.RWMutex
	cap   int
	items []T
}

func NewRolling[T any](capacity int) *Rolling[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Rolling[T]{
		cap:   capacity,
		items: make([]T, 0, capacity),
	}
}

func (r *Rolling[T]) Append(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == r.cap {
		copy(r.items, r.items[1:])
		r.items[len(r.items)-1] = v
		return
	}
	r.items = append(r.items, v)
}

// Replace swaps the whole content. Only the last Cap() elements of vs are kept.
func (r *Rolling[T]) Replace(vs []T) {
	if len(vs) > r.cap {
		vs = vs[len(vs)-r.cap:]
	}
	next := make([]T, len(vs), r.cap)
	copy(next, vs)

	r.mu.Lock()
	r.items = next
	r.mu.Unlock()
}

func (r *Rolling[T]) Reset() {
	r.mu.Lock()
	r.items = make([]T, 0, r.cap)
	r.mu.Unlock()
}

// Items returns a copy in insertion order.
func (r *Rolling[T]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Rolling[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Rolling[T]) Cap() int {
	return r.cap
}
