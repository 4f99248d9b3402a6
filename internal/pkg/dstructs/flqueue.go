package dstructs

import "sync"

// FlQueue is a manual-flush queue that is thread-safe. When a limit is set, pushing
// onto a full queue drops the oldest entry.
type FlQueue[T any] struct {
	mu    sync.Mutex
	limit int
	queue []*T
}

func NewFlQueue[T any](limit int) *FlQueue[T] {
	return &FlQueue[T]{
		limit: limit,
		queue: make([]*T, 0, 16),
	}
}

func (m *FlQueue[T]) Push(r *T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 && len(m.queue) >= m.limit {
		m.queue = append(m.queue[:0], m.queue[1:]...)
	}
	m.queue = append(m.queue, r)
}

func (m *FlQueue[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Flush returns everything queued so far and empties the queue.
func (m *FlQueue[T]) Flush() []*T {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queue
	m.queue = make([]*T, 0, 16)
	return q
}
