package viewstate

import "sync"

// Notifier fans a "view changed" signal out to subscribers. Each subscriber channel
// holds at most one pending signal, so bursts of merges coalesce.
type Notifier struct {
	subscribers map[chan struct{}]struct{}
	mu          sync.RWMutex
}

func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[chan struct{}]struct{}),
	}
}

func (n *Notifier) Subscribe() chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan struct{}, 1)
	n.subscribers[ch] = struct{}{}
	return ch
}

func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.subscribers[ch]; !ok {
		return
	}
	delete(n.subscribers, ch)
	close(ch)
}

func (n *Notifier) Notify() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.subscribers {
		select {
		case ch <- struct{}{}:
		default:
			// already pending
		}
	}
}
