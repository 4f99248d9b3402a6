package service

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/command"
	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/pkg/cache"
	"exusiai.dev/dashsync/internal/pkg/dstructs"
	"exusiai.dev/dashsync/internal/poller"
	"exusiai.dev/dashsync/internal/render"
	"exusiai.dev/dashsync/internal/repo"
	"exusiai.dev/dashsync/internal/viewstate"
)

const (
	ChannelMetrics = "metrics"
	ChannelOngoing = "ongoing"
	ChannelAlerts  = "alerts"
	ChannelChart   = "chart"

	// SeriesTemperature is the chart series fed by the metrics payload in combined mode.
	SeriesTemperature = "Temperature"
)

type DashboardDeps struct {
	fx.In

	Config       *appconfig.Config
	Upstream     *infra.Upstream
	MetricsRepo  *repo.Metrics
	ShipmentRepo *repo.Shipment
	AlertRepo    *repo.Alert
}

// Dashboard owns the view state, every channel polling into it, the scheduler
// driving those channels and the command executor.
type Dashboard struct {
	conf      *appconfig.Config
	state     *viewstate.State
	scheduler *poller.Scheduler
	renderer  *render.Renderer

	metrics *poller.Channel[model.Metrics]
	ongoing *poller.Channel[[]model.ShipmentRow]
	alerts  *poller.Channel[[]model.Alert]
	chart   *poller.Channel[[]model.SeriesPoint]

	shipments     *repo.Shipment
	executor      *command.Executor
	// base detaches shared detail loads from the request that happened to start them
	base          context.Context
	cancelBase    context.CancelFunc
	details       *cache.Keyed[*model.ShipmentDetail]
	notifications *dstructs.FlQueue[model.Notification]
}

func NewDashboard(deps DashboardDeps) (*Dashboard, error) {
	conf := deps.Config
	routes, err := compileRoutes(conf)
	if err != nil {
		return nil, err
	}

	base, cancelBase := context.WithCancel(context.Background())
	d := &Dashboard{
		conf:          conf,
		base:          base,
		cancelBase:    cancelBase,
		state:         viewstate.New(),
		scheduler:     poller.NewScheduler(),
		renderer:      render.New(time.Local),
		shipments:     deps.ShipmentRepo,
		details:       cache.NewKeyed[*model.ShipmentDetail]("shipment-detail", conf.DetailCacheTTL),
		notifications: dstructs.NewFlQueue[model.Notification](conf.NotificationLimit),
	}

	var combined *viewstate.Series
	if conf.ChartMode == appconfig.ChartModeCombined {
		combined, err = d.state.AddSeries(SeriesTemperature, viewstate.SeriesServer, conf.ChartCapacity)
		if err != nil {
			return nil, err
		}
	}

	d.metrics = poller.New(poller.Config[model.Metrics]{
		Name:     ChannelMetrics,
		Interval: conf.MetricsInterval,
		Timeout:  conf.FetchTimeout,
		Route:    routes[ChannelMetrics],
		Fetch:    deps.MetricsRepo.Fetch,
		Merge: func(m model.Metrics) {
			d.state.SetMetrics(m, time.Now())
			if combined != nil && m.HasChart() {
				if err := combined.Replace(m.ChartPoints()); err != nil {
					log.Error().Err(err).Str("evt.name", "dashboard.chart").Msg("failed to merge chart")
				}
			}
		},
		Reset: func() {
			d.state.ClearMetrics()
			if combined != nil {
				d.state.ClearChart()
			}
		},
		OnFailure: onFailure,
	})

	d.ongoing = poller.New(poller.Config[[]model.ShipmentRow]{
		Name:      ChannelOngoing,
		Interval:  conf.OngoingInterval,
		Timeout:   conf.FetchTimeout,
		Route:     routes[ChannelOngoing],
		Fetch:     deps.ShipmentRepo.FetchOngoing,
		Merge:     d.state.SetShipments,
		Reset:     d.state.ClearShipments,
		OnFailure: onFailure,
	})

	d.alerts = poller.New(poller.Config[[]model.Alert]{
		Name:      ChannelAlerts,
		Interval:  conf.AlertsInterval,
		Timeout:   conf.FetchTimeout,
		Route:     routes[ChannelAlerts],
		Fetch:     deps.AlertRepo.Fetch,
		Merge:     d.state.SetAlerts,
		Reset:     d.state.ClearAlerts,
		OnFailure: onFailure,
	})

	d.scheduler.Register(d.metrics, d.ongoing, d.alerts)

	if conf.ChartMode == appconfig.ChartModeSimulated {
		if d.chart, err = d.simulatedChart(routes[ChannelChart]); err != nil {
			return nil, err
		}
		d.scheduler.Register(d.chart)
	}

	// the ongoing table is the slice a command changes; metrics follow from it
	d.executor = command.NewExecutor(deps.ShipmentRepo, deps.Upstream, d.notifications, conf.CommandTimeout, d.ongoing, d.metrics)

	return d, nil
}

func compileRoutes(conf *appconfig.Config) (map[string]poller.RouteMatcher, error) {
	sources := map[string]string{
		ChannelMetrics: conf.RouteMetrics,
		ChannelOngoing: conf.RouteOngoing,
		ChannelAlerts:  conf.RouteAlerts,
		ChannelChart:   conf.RouteChart,
	}
	routes := make(map[string]poller.RouteMatcher, len(sources))
	for name, src := range sources {
		r, err := poller.CompileRoute(src)
		if err != nil {
			return nil, errors.Wrapf(err, "dashboard: invalid route predicate for channel %s", name)
		}
		routes[name] = r
	}
	return routes, nil
}

func onFailure(name string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	infra.CaptureChannelFailure(name, err)
}

// Start navigates to the configured initial route, which activates the matching channels.
func (d *Dashboard) Start() {
	d.StartAt("")
}

// StartAt navigates to route, or to the configured initial route when route is empty.
func (d *Dashboard) StartAt(route string) {
	if route == "" {
		route = d.conf.InitialRoute
	}
	d.Navigate(route)
}

// Stop deactivates every channel and waits for in-flight polls to return.
func (d *Dashboard) Stop() {
	d.scheduler.Stop()
	d.cancelBase()
}

// Navigate is the route signal: channels matching route are activated, all
// others deactivated.
func (d *Dashboard) Navigate(route string) (activated, deactivated []string) {
	return d.scheduler.Navigate(route)
}

func (d *Dashboard) Route() string {
	return d.scheduler.Route()
}

func (d *Dashboard) State() *viewstate.State {
	return d.state
}

func (d *Dashboard) Snapshot() viewstate.Snapshot {
	return d.state.Snapshot()
}

// Document renders the current snapshot onto a fresh in-memory document.
func (d *Dashboard) Document() *render.Document {
	doc := render.NewDocument()
	d.renderer.Render(d.state.Snapshot(), doc)
	return doc
}

// Render projects the current snapshot onto s.
func (d *Dashboard) Render(s render.Surface) {
	d.renderer.Render(d.state.Snapshot(), s)
}

// Channels returns the health of every registered channel.
func (d *Dashboard) Channels() []poller.State {
	chs := d.scheduler.Channels()
	states := make([]poller.State, 0, len(chs))
	for _, ch := range chs {
		states = append(states, ch.State())
	}
	return states
}

// Refresh polls the named channel out of cycle.
func (d *Dashboard) Refresh(ctx context.Context, name string) (poller.Result, error) {
	ch, ok := d.scheduler.Channel(name)
	if !ok {
		return poller.ResultInactive, errors.Errorf("dashboard: unknown channel %q", name)
	}
	return ch.Refresh(ctx), nil
}

// Execute runs a mutating command. The shipment detail cache entry is dropped on
// success so the next detail read sees the change.
func (d *Dashboard) Execute(ctx context.Context, k command.Kind, id int64, confirmer command.Confirmer) (string, error) {
	msg, err := d.executor.Execute(ctx, k, id, confirmer)
	if err != nil {
		return "", err
	}
	d.details.Delete(strconv.FormatInt(id, 10))
	return msg, nil
}

// Detail fetches the detail of one shipment on demand. Concurrent reads of the same
// shipment share one request and the result is cached briefly. The shared request
// is bounded by the fetch timeout, not by any single caller's context; ctx only
// gives up waiting for it.
func (d *Dashboard) Detail(ctx context.Context, id int64) (*model.ShipmentDetail, error) {
	type result struct {
		detail *model.ShipmentDetail
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		detail, err := d.details.GetOrLoad(strconv.FormatInt(id, 10), func() (*model.ShipmentDetail, error) {
			lctx, cancel := context.WithTimeout(d.base, d.conf.FetchTimeout)
			defer cancel()
			return d.shipments.FetchDetail(lctx, id)
		})
		ch <- result{detail, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.detail, r.err
	}
}

// Notifications drains the notification queue.
func (d *Dashboard) Notifications() []*model.Notification {
	return d.notifications.Flush()
}
