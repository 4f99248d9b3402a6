package watch

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/repo"
	"exusiai.dev/dashsync/internal/service"
	"exusiai.dev/dashsync/internal/util"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newDashboard(t *testing.T) *service.Dashboard {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/dashboard/ongoing/data/":
			io.WriteString(w, `{"ongoing_data": [{"contract_id": 42, "product_name": "VaccineX", "status": "In Transit"}]}`)
		case "/dashboard/alerts/data/":
			io.WriteString(w, `[]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	conf := &appconfig.Config{ConfigSpec: appconfig.ConfigSpec{
		UpstreamBaseURL:   srv.URL,
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
		RouteMetrics:      "route contains 'dashboard'",
		RouteOngoing:      "route contains 'ongoing'",
		RouteChart:        "route contains 'dashboard'",
		InitialRoute:      "/dashboard/",
		ChartMode:         appconfig.ChartModeCombined,
		ChartCapacity:     10,
		DetailCacheTTL:    time.Minute,
		NotificationLimit: 10,
	}}
	up, err := infra.NewUpstream(conf)
	require.NoError(t, err)
	validate := util.NewValidator()

	d, err := service.NewDashboard(service.DashboardDeps{
		Config:       conf,
		Upstream:     up,
		MetricsRepo:  repo.NewMetrics(up, conf, validate),
		ShipmentRepo: repo.NewShipment(up, conf, validate),
		AlertRepo:    repo.NewAlert(up, conf, validate),
	})
	require.NoError(t, err)
	return d
}

func requests(d *service.Dashboard, name string) uint64 {
	for _, st := range d.Channels() {
		if st.Name == name {
			return st.Requests
		}
	}
	return 0
}

func TestWatchStartsAtRequestedRoute(t *testing.T) {
	d := newDashboard(t)
	out := &lockedBuffer{}

	lc := fxtest.NewLifecycle(t)
	watch(lc, d, "/ongoing/", out)
	lc.RequireStart()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "#42 | VaccineX")
	}, time.Second, 5*time.Millisecond, "the first merge is printed")
	assert.Equal(t, "/ongoing/", d.Route())
	assert.EqualValues(t, 0, requests(d, service.ChannelMetrics), "the initial route is never visited")

	lc.RequireStop()
	for _, st := range d.Channels() {
		assert.False(t, st.Active, st.Name)
	}
}

func TestWatchDefaultsToInitialRoute(t *testing.T) {
	d := newDashboard(t)

	lc := fxtest.NewLifecycle(t)
	watch(lc, d, "", &lockedBuffer{})
	lc.RequireStart()
	defer lc.RequireStop()

	assert.Equal(t, "/dashboard/", d.Route())
}
