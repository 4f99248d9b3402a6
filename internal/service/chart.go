package service

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/poller"
	"exusiai.dev/dashsync/internal/viewstate"
)

// walk is a bounded random walk around a baseline, one step per tick.
type walk struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	baseline float64
	value    float64
}

const (
	walkStep   = 0.4
	walkSpread = 2.0
)

func (w *walk) next() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	v := w.value + (w.rnd.Float64()*2-1)*walkStep
	v = math.Max(w.baseline-walkSpread, math.Min(w.baseline+walkSpread, v))
	w.value = math.Round(v*100) / 100
	return w.value
}

// simulatedChart builds the chart channel for simulated mode. Its fetch never
// touches the network: every tick appends one generated point per series.
func (d *Dashboard) simulatedChart(route poller.RouteMatcher) (*poller.Channel[[]model.SeriesPoint], error) {
	seeds := d.conf.ChartSimulatedSeries
	series := make([]*viewstate.Series, 0, len(seeds))
	walks := make([]*walk, 0, len(seeds))
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, seed := range seeds {
		se, err := d.state.AddSeries(seed.Name, viewstate.SeriesSimulated, d.conf.ChartCapacity)
		if err != nil {
			return nil, err
		}
		series = append(series, se)
		walks = append(walks, &walk{rnd: rand.New(rand.NewSource(rnd.Int63())), baseline: seed.Baseline, value: seed.Baseline})
	}

	return poller.New(poller.Config[[]model.SeriesPoint]{
		Name:     ChannelChart,
		Interval: d.conf.ChartInterval,
		Timeout:  d.conf.FetchTimeout,
		Route:    route,
		Fetch: func(ctx context.Context) (poller.Payload[[]model.SeriesPoint], error) {
			label := time.Now().Format("15:04:05")
			points := make([]model.SeriesPoint, len(walks))
			for i, w := range walks {
				points[i] = model.SeriesPoint{Label: label, Value: w.next()}
			}
			return poller.Payload[[]model.SeriesPoint]{Data: points}, nil
		},
		Merge: func(points []model.SeriesPoint) {
			for i, p := range points {
				_ = series[i].Append(p)
			}
		},
		Reset: d.state.ClearChart,
	}), nil
}
