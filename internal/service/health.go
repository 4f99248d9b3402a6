package service

import (
	"context"

	"github.com/pkg/errors"

	"exusiai.dev/dashsync/internal/poller"
)

var ErrUpstreamNotReachable = errors.New("upstream not reachable")

// degradedAfter is the number of consecutive failures after which an active
// channel makes the service unhealthy.
const degradedAfter = 3

type Health struct {
	Dashboard *Dashboard
}

func NewHealth(dashboard *Dashboard) *Health {
	return &Health{
		Dashboard: dashboard,
	}
}

// Ping reports the first active channel that has failed degradedAfter times in a row.
func (s *Health) Ping(ctx context.Context) error {
	for _, st := range s.Dashboard.Channels() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.Active && st.ConsecutiveFailures >= degradedAfter {
			return errors.Wrapf(ErrUpstreamNotReachable, "channel %s: %s", st.Name, st.LastError)
		}
	}
	return nil
}

// Unhealthy lists the active channels whose last fetch failed.
func (s *Health) Unhealthy() []poller.State {
	var out []poller.State
	for _, st := range s.Dashboard.Channels() {
		if st.Active && st.ConsecutiveFailures > 0 {
			out = append(out, st)
		}
	}
	return out
}
