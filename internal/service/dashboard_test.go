package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/command"
	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/pkg/marker"
	"exusiai.dev/dashsync/internal/poller"
	"exusiai.dev/dashsync/internal/render"
	"exusiai.dev/dashsync/internal/repo"
	"exusiai.dev/dashsync/internal/util"
)

type upstream struct {
	detailHits atomic.Int32
	actionHits atomic.Int32
	metricsBad atomic.Bool

	// detail requests wait for detailRelease while detailBlocked is set
	detailBlocked atomic.Bool
	detailRelease chan struct{}
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/dashboard/data/":
		if u.metricsBad.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"total_contracts": 10, "active_contracts": 3, "completed_contracts": 7, "avg_temp": -2.5,
			"active_alerts": 1, "status_color": "bg-success", "chart_labels": ["10:00", "10:01"], "chart_values": [4, 4.5]}`)
	case "/dashboard/ongoing/data/":
		io.WriteString(w, `{"ongoing_data": [{"contract_id": 42, "product_name": "VaccineX", "temperature": null,
			"status": "In Transit", "buyer_name": null, "seller_name": "Acme"}]}`)
	case "/dashboard/alerts/data/":
		io.WriteString(w, `[{"severity": "critical", "message": "Freezer 3 above threshold"}]`)
	case "/dashboard/shipment/42/":
		u.detailHits.Add(1)
		if u.detailBlocked.Load() {
			<-u.detailRelease
		}
		io.WriteString(w, `{"contract_id": 42, "product_name": "VaccineX", "buyer_email": "b@example.com"}`)
	case "/dashboard/contract/42/action/":
		u.actionHits.Add(1)
		io.WriteString(w, `{"message": "Contract #42 marked complete."}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestConf(base string) *appconfig.Config {
	return &appconfig.Config{ConfigSpec: appconfig.ConfigSpec{
		UpstreamBaseURL:   base,
		UpstreamCSRFToken: "tok",
		MetricsPath:       "/dashboard/data/",
		OngoingPath:       "/dashboard/ongoing/data/",
		AlertsPath:        "/dashboard/alerts/data/",
		DetailPath:        "/dashboard/shipment/{id}/",
		ActionPath:        "/dashboard/contract/{id}/action/",
		MetricsInterval:   time.Hour,
		OngoingInterval:   time.Hour,
		AlertsInterval:    time.Hour,
		ChartInterval:     time.Hour,
		FetchTimeout:      time.Second,
		CommandTimeout:    time.Second,
		RouteMetrics:      "route contains 'overview' || route contains 'dashboard'",
		RouteOngoing:      "route contains 'ongoing'",
		RouteChart:        "route contains 'overview' || route contains 'dashboard'",
		InitialRoute:      "/dashboard/",
		ChartMode:         appconfig.ChartModeCombined,
		ChartCapacity:     10,
		DetailCacheTTL:    time.Minute,
		NotificationLimit: 10,
	}}
}

func newTestDashboard(t *testing.T, conf *appconfig.Config) (*Dashboard, *upstream) {
	t.Helper()
	u := &upstream{detailRelease: make(chan struct{})}
	srv := httptest.NewServer(u)
	t.Cleanup(srv.Close)

	conf.UpstreamBaseURL = srv.URL
	up, err := infra.NewUpstream(conf)
	require.NoError(t, err)
	validate := util.NewValidator()

	d, err := NewDashboard(DashboardDeps{
		Config:       conf,
		Upstream:     up,
		MetricsRepo:  repo.NewMetrics(up, conf, validate),
		ShipmentRepo: repo.NewShipment(up, conf, validate),
		AlertRepo:    repo.NewAlert(up, conf, validate),
	})
	require.NoError(t, err)
	t.Cleanup(d.Stop)
	return d, u
}

func idle(ch interface{ State() poller.State }, requests uint64) func() bool {
	return func() bool {
		st := ch.State()
		return st.Requests == requests && !st.InFlight
	}
}

func TestDashboardStartPollsMatchingChannels(t *testing.T) {
	d, _ := newTestDashboard(t, newTestConf(""))
	d.Start()

	require.Eventually(t, func() bool {
		snap := d.Snapshot()
		return snap.Metrics != nil && snap.Alerts != nil && snap.Chart != nil
	}, time.Second, 5*time.Millisecond)

	snap := d.Snapshot()
	assert.Nil(t, snap.Shipments, "ongoing is inactive on the overview route")
	assert.Equal(t, 3, snap.Metrics.ActiveContracts)
	require.Len(t, snap.Chart, 1)
	assert.Equal(t, []float64{4, 4.5}, snap.Chart[0].Values())

	doc := d.Document()
	assert.Equal(t, "-2.5°C", doc.Text(render.IDAvgTemp))
	assert.Equal(t, "3 active, 7 completed", doc.Text(render.IDContractBreakdown))
	assert.True(t, doc.HasClass(render.IDStatusIndicator, "bg-success"))
	assert.Len(t, doc.Items(render.IDAlertsContainer), 1)
	assert.Equal(t, "/dashboard/", d.Route())
}

func TestDashboardNavigateClearsInactiveSlices(t *testing.T) {
	d, _ := newTestDashboard(t, newTestConf(""))
	d.Navigate("/ongoing/")

	require.Eventually(t, func() bool { return d.Snapshot().Shipments != nil }, time.Second, 5*time.Millisecond)
	rows := d.Document().Rows(render.IDOngoingTable)
	require.Len(t, rows, 1)
	assert.Equal(t, "#42", rows[0].Cells[0].Text)
	assert.Equal(t, render.NoDataText, rows[0].Cells[2].Text)
	assert.Equal(t, "—", rows[0].Cells[4].Text)
	assert.Equal(t, "Acme", rows[0].Cells[5].Text)
	assert.Nil(t, d.Snapshot().Metrics)

	_, deactivated := d.Navigate("/settings/")
	assert.Contains(t, deactivated, ChannelOngoing)
	assert.Nil(t, d.Snapshot().Shipments)
}

func TestDashboardOutOfOrderMarkers(t *testing.T) {
	d, _ := newTestDashboard(t, newTestConf(""))
	d.ongoing.Activate()

	t1 := marker.Parse("2024-05-01T10:00:00Z")
	t2 := marker.Parse("2024-05-01T10:00:30Z")
	assert.Equal(t, poller.ResultAccepted, d.ongoing.Accept(poller.Payload[[]model.ShipmentRow]{
		Data: []model.ShipmentRow{{ID: 2, ProductName: "T2"}}, Marker: t2,
	}))
	rev := d.State().Revision()
	assert.Equal(t, poller.ResultDiscarded, d.ongoing.Accept(poller.Payload[[]model.ShipmentRow]{
		Data: []model.ShipmentRow{{ID: 1, ProductName: "T1"}}, Marker: t1,
	}))

	snap := d.Snapshot()
	require.Len(t, snap.Shipments, 1)
	assert.Equal(t, "T2", snap.Shipments[0].ProductName)
	assert.Equal(t, rev, snap.Revision)
}

func TestDashboardCompleteRefreshesOngoingOnce(t *testing.T) {
	d, u := newTestDashboard(t, newTestConf(""))
	d.Navigate("/dashboard/ongoing/")
	require.Eventually(t, idle(d.ongoing, 1), time.Second, 5*time.Millisecond)
	require.Eventually(t, idle(d.metrics, 1), time.Second, 5*time.Millisecond)

	msg, err := d.Execute(context.Background(), command.Complete, 42, command.Static(true))
	require.NoError(t, err)
	assert.Equal(t, "Contract #42 marked complete.", msg)
	assert.EqualValues(t, 1, u.actionHits.Load())
	assert.EqualValues(t, 2, d.ongoing.Requests())

	notes := d.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationSuccess, notes[0].Level)
	assert.Empty(t, d.Notifications())
}

func TestDashboardDeclinedCommand(t *testing.T) {
	d, u := newTestDashboard(t, newTestConf(""))

	_, err := d.Execute(context.Background(), command.Refund, 42, command.Static(false))
	assert.ErrorIs(t, err, command.ErrNotConfirmed)
	assert.EqualValues(t, 0, u.actionHits.Load())
}

func TestDashboardDetailIsCached(t *testing.T) {
	d, u := newTestDashboard(t, newTestConf(""))

	for i := 0; i < 3; i++ {
		detail, err := d.Detail(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, "b@example.com", detail.BuyerEmail.String.String)
	}
	assert.EqualValues(t, 1, u.detailHits.Load())

	_, err := d.Detail(context.Background(), 9)
	assert.ErrorIs(t, err, poller.ErrStatus)
}

func TestDashboardSimulatedChart(t *testing.T) {
	conf := newTestConf("")
	conf.ChartMode = appconfig.ChartModeSimulated
	conf.ChartInterval = 5 * time.Millisecond
	conf.ChartCapacity = 3
	conf.ChartSimulatedSeries = appconfig.SeriesSeeds{{Name: "Freezer A", Baseline: -18}, {Name: "Fridge B", Baseline: 4}}
	d, _ := newTestDashboard(t, conf)
	d.Start()

	require.Eventually(t, func() bool {
		se, ok := d.State().Series("Freezer A")
		return ok && se.Len() == 3
	}, time.Second, 5*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	snap := d.Snapshot()
	require.Len(t, snap.Chart, 2)
	for _, s := range snap.Chart {
		assert.LessOrEqual(t, len(s.Points), 3)
	}
	for _, v := range snap.Chart[0].Values() {
		assert.InDelta(t, -18, v, walkSpread+0.01)
	}
	assert.Equal(t, 4, len(d.Channels()))
}

func TestDashboardRejectsBadRoute(t *testing.T) {
	conf := newTestConf("http://localhost")
	conf.RouteAlerts = "route +"
	up, err := infra.NewUpstream(conf)
	require.NoError(t, err)

	_, err = NewDashboard(DashboardDeps{Config: conf, Upstream: up})
	assert.Error(t, err)
}

func TestHealthPing(t *testing.T) {
	d, u := newTestDashboard(t, newTestConf(""))
	u.metricsBad.Store(true)
	h := NewHealth(d)
	d.metrics.Activate()

	for i := 0; i < degradedAfter; i++ {
		assert.Equal(t, poller.ResultFailed, d.metrics.Poll(context.Background()))
	}
	assert.ErrorIs(t, h.Ping(context.Background()), ErrUpstreamNotReachable)
	require.Len(t, h.Unhealthy(), 1)

	u.metricsBad.Store(false)
	assert.Equal(t, poller.ResultAccepted, d.metrics.Poll(context.Background()))
	assert.NoError(t, h.Ping(context.Background()))
}

func TestDashboardDetailOutlivesCancelledCaller(t *testing.T) {
	d, u := newTestDashboard(t, newTestConf(""))
	u.detailBlocked.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := d.Detail(ctx, 42)
		first <- err
	}()
	require.Eventually(t, func() bool { return u.detailHits.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		detail *model.ShipmentDetail
		err    error
	}
	second := make(chan result, 1)
	go func() {
		detail, err := d.Detail(context.Background(), 42)
		second <- result{detail, err}
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(u.detailRelease)
	r := <-second
	require.NoError(t, r.err)
	assert.Equal(t, "b@example.com", r.detail.BuyerEmail.String.String)
	assert.EqualValues(t, 1, u.detailHits.Load())
}

func TestFailingChannelDoesNotStopOthers(t *testing.T) {
	conf := newTestConf("")
	conf.MetricsInterval = 10 * time.Millisecond
	conf.OngoingInterval = 10 * time.Millisecond
	conf.AlertsInterval = 10 * time.Millisecond
	d, u := newTestDashboard(t, conf)

	d.Navigate("/dashboard/ongoing/")
	require.Eventually(t, func() bool {
		snap := d.Snapshot()
		return snap.Metrics != nil && snap.Shipments != nil && snap.Alerts != nil
	}, time.Second, 5*time.Millisecond)

	u.metricsBad.Store(true)
	require.Eventually(t, func() bool {
		return d.metrics.State().ConsecutiveFailures >= 3
	}, time.Second, 5*time.Millisecond)

	ongoing, alerts := d.ongoing.Requests(), d.alerts.Requests()
	require.Eventually(t, func() bool {
		return d.ongoing.Requests() >= ongoing+3 && d.alerts.Requests() >= alerts+3
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, d.ongoing.State().ConsecutiveFailures)
	assert.Zero(t, d.alerts.State().ConsecutiveFailures)
	assert.Greater(t, d.metrics.State().ConsecutiveFailures, 0)

	snap := d.Snapshot()
	require.NotNil(t, snap.Metrics, "metrics keeps its last good slice")
	assert.Equal(t, 3, snap.Metrics.ActiveContracts)
	require.Len(t, snap.Shipments, 1)
	require.Len(t, snap.Alerts, 1)

	doc := d.Document()
	assert.Equal(t, "-2.5°C", doc.Text(render.IDAvgTemp))
	assert.Equal(t, "#42", doc.Rows(render.IDOngoingTable)[0].Cells[0].Text)
	assert.Len(t, doc.Items(render.IDAlertsContainer), 1)
}
