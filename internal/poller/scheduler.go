package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Pollable is the type-erased view of a Channel the Scheduler drives.
type Pollable interface {
	Name() string
	Interval() time.Duration
	Matches(route string) bool
	Activate() bool
	Deactivate()
	Poll(ctx context.Context) Result
	Refresh(ctx context.Context) Result
	State() State
}

type loop struct {
	cancel context.CancelFunc
}

// Scheduler owns one timer per active channel. Timers are independent of each
// other; every tick polls on its own goroutine so a slow fetch turns later ticks
// into skips instead of queueing them.
type Scheduler struct {
	mu       sync.Mutex
	route    string
	channels []Pollable
	loops    map[string]*loop
	stopped  bool

	base       context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup
}

func NewScheduler() *Scheduler {
	base, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		loops:      make(map[string]*loop),
		base:       base,
		cancelBase: cancel,
	}
}

// Register adds channels. They stay inactive until Navigate or Activate.
func (s *Scheduler) Register(chs ...Pollable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append(s.channels, chs...)
}

func (s *Scheduler) Channels() []Pollable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Pollable(nil), s.channels...)
}

func (s *Scheduler) Channel(name string) (Pollable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch.Name() == name {
			return ch, true
		}
	}
	return nil, false
}

func (s *Scheduler) Route() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

// Navigate records route as the current location, activating every channel whose
// predicate matches it and deactivating the rest.
func (s *Scheduler) Navigate(route string) (activated, deactivated []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, nil
	}
	s.route = route

	for _, ch := range s.channels {
		_, running := s.loops[ch.Name()]
		matches := ch.Matches(route)
		switch {
		case matches && !running:
			s.activate(ch)
			activated = append(activated, ch.Name())
		case !matches && running:
			s.deactivate(ch)
			deactivated = append(deactivated, ch.Name())
		}
	}

	log.Info().
		Str("evt.name", "poller.navigate").
		Str("route", route).
		Strs("activated", activated).
		Strs("deactivated", deactivated).
		Msg("route changed")
	return activated, deactivated
}

// Activate starts ch regardless of the current route: one immediate poll, then
// one poll per interval.
func (s *Scheduler) Activate(ch Pollable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if _, running := s.loops[ch.Name()]; running {
		return
	}
	s.activate(ch)
}

func (s *Scheduler) Deactivate(ch Pollable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.loops[ch.Name()]; !running {
		return
	}
	s.deactivate(ch)
}

func (s *Scheduler) activate(ch Pollable) {
	ch.Activate()
	ctx, cancel := context.WithCancel(s.base)
	s.loops[ch.Name()] = &loop{cancel: cancel}

	log.Debug().
		Str("evt.name", "poller.activate").
		Str("channel", ch.Name()).
		Dur("interval", ch.Interval()).
		Msg("channel activated")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.fire(ctx, ch)

		ticker := time.NewTicker(ch.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.fire(ctx, ch)
			}
		}
	}()
}

func (s *Scheduler) fire(ctx context.Context, ch Pollable) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ch.Poll(ctx)
	}()
}

// deactivate drops the channel's in-flight response before cancelling its
// request, so the cancellation is never counted as a failure.
func (s *Scheduler) deactivate(ch Pollable) {
	ch.Deactivate()
	if l, ok := s.loops[ch.Name()]; ok {
		l.cancel()
		delete(s.loops, ch.Name())
	}

	log.Debug().
		Str("evt.name", "poller.deactivate").
		Str("channel", ch.Name()).
		Msg("channel deactivated")
}

// Stop deactivates every channel and waits for their goroutines to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for _, ch := range s.channels {
		if _, running := s.loops[ch.Name()]; running {
			s.deactivate(ch)
		}
	}
	s.cancelBase()
	s.mu.Unlock()

	s.wg.Wait()
}
