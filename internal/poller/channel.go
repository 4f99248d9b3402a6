// Package poller implements independently scheduled data channels: each channel
// fetches a snapshot from upstream, rejects stale responses by their freshness
// marker and merges accepted snapshots wholesale into its slice of the view.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"exusiai.dev/dashsync/internal/pkg/marker"
	"exusiai.dev/dashsync/internal/pkg/observability"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 8 * time.Second
)

// ErrStatus is wrapped by fetchers when upstream answers with a non-success status.
var ErrStatus = errors.New("poller: upstream returned a non-success status")

type Result int

const (
	// ResultSkipped means a poll was requested while another was still in flight.
	ResultSkipped Result = iota
	// ResultInactive means the channel is not active on the current route; nothing was fetched.
	ResultInactive
	ResultAccepted
	// ResultDiscarded means the response was not newer than the last accepted one.
	ResultDiscarded
	ResultFailed
	// ResultDropped means the channel was deactivated while the request was in flight.
	ResultDropped
)

func (r Result) String() string {
	switch r {
	case ResultSkipped:
		return "skipped"
	case ResultInactive:
		return "inactive"
	case ResultAccepted:
		return "accepted"
	case ResultDiscarded:
		return "discarded"
	case ResultFailed:
		return "failed"
	case ResultDropped:
		return "dropped"
	}
	return "unknown"
}

// Payload is one fetched snapshot. A zero Marker means the feed supplied none.
type Payload[T any] struct {
	Data   T
	Marker marker.Marker
}

type Config[T any] struct {
	Name     string
	Interval time.Duration
	// Timeout bounds every fetch so a stalled request cannot keep the channel in flight.
	Timeout time.Duration
	Route   RouteMatcher

	Fetch func(ctx context.Context) (Payload[T], error)
	// Merge replaces the channel's view slice. It runs under the channel lock.
	Merge func(data T)
	// Reset clears the channel's view slice on deactivation.
	Reset func()
	// OnFailure is called after a failed fetch has been recorded.
	OnFailure func(name string, err error)
}

type Channel[T any] struct {
	conf Config[T]

	// inFlight holds the epoch of the poll in flight, 0 when idle. A poll of an
	// earlier epoch was cancelled by deactivation and no longer counts.
	inFlight atomic.Uint64
	followUp atomic.Bool
	requests atomic.Uint64

	mu           sync.Mutex
	active       bool
	epoch        uint64
	last         marker.Marker
	failures     int
	lastErr      error
	lastAccepted time.Time
}

func New[T any](conf Config[T]) *Channel[T] {
	if conf.Interval <= 0 {
		conf.Interval = DefaultInterval
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	if conf.Route.String() == "" {
		conf.Route = AnyRoute()
	}
	return &Channel[T]{conf: conf}
}

func (c *Channel[T]) Name() string {
	return c.conf.Name
}

func (c *Channel[T]) Interval() time.Duration {
	return c.conf.Interval
}

func (c *Channel[T]) Matches(route string) bool {
	return c.conf.Route.Match(route)
}

// Requests is the number of fetches issued so far.
func (c *Channel[T]) Requests() uint64 {
	return c.requests.Load()
}

func (c *Channel[T]) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Activate marks the channel active and starts a new epoch. It reports false when
// the channel was already active.
func (c *Channel[T]) Activate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return false
	}
	c.active = true
	c.epoch++
	return true
}

// Deactivate marks the channel inactive, forgets the last marker and clears the
// view slice. Responses of requests started before this call are dropped.
func (c *Channel[T]) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.active = false
	c.epoch++
	c.last = marker.Marker{}
	c.failures = 0
	c.lastErr = nil
	observability.ChannelConsecutiveFailures.WithLabelValues(c.conf.Name).Set(0)
	if c.conf.Reset != nil {
		c.conf.Reset()
	}
}

// Poll fetches and accepts one snapshot. It is a no-op while another poll is in flight.
func (c *Channel[T]) Poll(ctx context.Context) Result {
	c.mu.Lock()
	active, epoch := c.active, c.epoch
	c.mu.Unlock()
	if !active {
		return c.observe(ResultInactive)
	}
	if !c.acquire(epoch) {
		return c.observe(ResultSkipped)
	}

	res := c.poll(ctx, epoch)
	c.inFlight.CompareAndSwap(epoch, 0)

	if c.current(epoch) && c.followUp.Swap(false) {
		c.Poll(ctx)
	}
	return res
}

// acquire takes the in-flight slot for epoch. A slot held by an older epoch is
// taken over: its response will be dropped and must not delay the first fetch
// of a reactivated channel.
func (c *Channel[T]) acquire(epoch uint64) bool {
	for {
		owner := c.inFlight.Load()
		if owner >= epoch {
			return false
		}
		if c.inFlight.CompareAndSwap(owner, epoch) {
			return true
		}
	}
}

func (c *Channel[T]) current(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active && c.epoch == epoch
}

// Refresh is an out-of-band Poll. When a poll is already in flight, one more poll
// runs right after it settles, so a response issued before the caller's write
// is never the last one merged.
func (c *Channel[T]) Refresh(ctx context.Context) Result {
	res := c.Poll(ctx)
	if res == ResultSkipped {
		c.followUp.Store(true)
		// the in-flight poll may have settled before the flag was set
		if c.inFlight.Load() == 0 && c.followUp.Swap(false) {
			return c.Poll(ctx)
		}
	}
	return res
}

func (c *Channel[T]) poll(ctx context.Context, epoch uint64) Result {
	c.requests.Add(1)

	fctx, cancel := context.WithTimeout(ctx, c.conf.Timeout)
	defer cancel()

	start := time.Now()
	payload, err := c.conf.Fetch(fctx)
	observability.ChannelFetchDuration.WithLabelValues(c.conf.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		return c.fail(epoch, err)
	}
	return c.accept(epoch, payload)
}

// Accept merges p if the channel is active and p is newer than the last accepted
// snapshot.
func (c *Channel[T]) Accept(p Payload[T]) Result {
	c.mu.Lock()
	active, epoch := c.active, c.epoch
	c.mu.Unlock()
	if !active {
		return c.observe(ResultInactive)
	}
	return c.accept(epoch, p)
}

func (c *Channel[T]) accept(epoch uint64, p Payload[T]) Result {
	c.mu.Lock()
	if !c.active || c.epoch != epoch {
		c.mu.Unlock()
		return c.observe(ResultDropped)
	}

	c.failures = 0
	c.lastErr = nil
	observability.ChannelConsecutiveFailures.WithLabelValues(c.conf.Name).Set(0)

	if !p.Marker.IsZero() && !c.last.IsZero() && !p.Marker.After(c.last) {
		last := c.last
		c.mu.Unlock()
		reason := "stale"
		if p.Marker.Equal(last) {
			reason = "duplicate"
		}
		log.Debug().
			Str("evt.name", "poller.discard").
			Str("channel", c.conf.Name).
			Str("marker", p.Marker.String()).
			Str("last", last.String()).
			Str("reason", reason).
			Msg("discarding response that is not newer than the last accepted one")
		return c.observe(ResultDiscarded)
	}

	if !p.Marker.IsZero() {
		c.last = p.Marker
	}
	if c.conf.Merge != nil {
		c.conf.Merge(p.Data)
	}
	c.lastAccepted = time.Now()
	c.mu.Unlock()

	return c.observe(ResultAccepted)
}

func (c *Channel[T]) fail(epoch uint64, err error) Result {
	c.mu.Lock()
	if !c.active || c.epoch != epoch {
		c.mu.Unlock()
		return c.observe(ResultDropped)
	}
	c.failures++
	c.lastErr = err
	failures := c.failures
	c.mu.Unlock()

	observability.ChannelConsecutiveFailures.WithLabelValues(c.conf.Name).Set(float64(failures))
	log.Warn().
		Str("evt.name", "poller.fetch").
		Str("channel", c.conf.Name).
		Int("failures", failures).
		Err(err).
		Msg("failed to fetch channel snapshot, keeping last known state")

	if c.conf.OnFailure != nil {
		c.conf.OnFailure(c.conf.Name, err)
	}
	return c.observe(ResultFailed)
}

func (c *Channel[T]) observe(res Result) Result {
	observability.ChannelPolls.WithLabelValues(c.conf.Name, res.String()).Inc()
	return res
}

// State is a point-in-time description of a channel, for health reporting.
type State struct {
	Name                string    `json:"name"`
	Interval            string    `json:"interval"`
	Route               string    `json:"route"`
	Active              bool      `json:"active"`
	InFlight            bool      `json:"inFlight"`
	Requests            uint64    `json:"requests"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAccepted        time.Time `json:"lastAccepted"`
	Marker              string    `json:"marker,omitempty"`
}

func (c *Channel[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Name:                c.conf.Name,
		Interval:            c.conf.Interval.String(),
		Route:               c.conf.Route.String(),
		Active:              c.active,
		InFlight:            c.inFlight.Load() != 0,
		Requests:            c.requests.Load(),
		ConsecutiveFailures: c.failures,
		LastAccepted:        c.lastAccepted,
		Marker:              c.last.String(),
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}
