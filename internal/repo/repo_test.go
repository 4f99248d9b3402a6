package repo

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/poller"
	"exusiai.dev/dashsync/internal/util"
)

type fixture struct {
	conf *appconfig.Config
	up   *infra.Upstream
}

func newFixture(t *testing.T, h http.Handler) *fixture {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conf := &appconfig.Config{ConfigSpec: appconfig.ConfigSpec{
		UpstreamBaseURL:   srv.URL,
		UpstreamCSRFToken: "csrf-token",
		UpstreamSessionID: "session",
		MetricsPath:       "/dashboard/data/",
		OngoingPath:       "/dashboard/ongoing/data/",
		AlertsPath:        "/dashboard/alerts/data/",
		DetailPath:        "/dashboard/shipment/{id}/",
		ActionPath:        "/dashboard/contract/{id}/action/",
	}}
	up, err := infra.NewUpstream(conf)
	require.NoError(t, err)
	return &fixture{conf: conf, up: up}
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestMetricsFetch(t *testing.T) {
	body, err := sjson.Set(`{}`, "avg_temp", -2.5)
	require.NoError(t, err)
	body, _ = sjson.Set(body, "active_contracts", 3)
	body, _ = sjson.Set(body, "status_color", "bg-danger")
	body, _ = sjson.Set(body, "version", 12)

	var seen *http.Request
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		respond(http.StatusOK, body)(w, r)
	}))

	p, err := NewMetrics(f.up, f.conf, util.NewValidator()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -2.5, p.Data.AvgTemp.Float64)
	assert.Equal(t, 3, p.Data.ActiveContracts)
	assert.Equal(t, "bg-danger", p.Data.StatusColor)
	assert.Equal(t, "12", p.Marker.String())

	require.NotNil(t, seen)
	assert.Equal(t, "/dashboard/data/", seen.URL.Path)
	assert.Equal(t, "XMLHttpRequest", seen.Header.Get("X-Requested-With"))
	c, err := seen.Cookie(infra.CookieSession)
	require.NoError(t, err)
	assert.Equal(t, "session", c.Value)
}

func TestMetricsFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{"server error", http.StatusServiceUnavailable, `{"error": "down"}`, poller.ErrStatus},
		{"not json", http.StatusOK, `<html>login</html>`, ErrMalformed},
		{"wrong type", http.StatusOK, `{"active_contracts": "three"}`, ErrMalformed},
		{"negative count", http.StatusOK, `{"total_contracts": -1}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, respond(tt.status, tt.body))
			_, err := NewMetrics(f.up, f.conf, util.NewValidator()).Fetch(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestFetchHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMetrics(f.up, f.conf, util.NewValidator()).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchOngoing(t *testing.T) {
	body := `{"version": "2024-05-01T10:00:00Z", "ongoing_data": [
		{"contract_id": 42, "product_name": "VaccineX", "temperature": null, "status": "In Transit", "buyer_name": null},
		{"contract_id": 0, "product_name": "no id"},
		{"contract_id": 7, "product_name": "Insulin", "temperature": "4.5°C", "status": "Delivered"}
	]}`
	f := newFixture(t, respond(http.StatusOK, body))

	p, err := NewShipment(f.up, f.conf, util.NewValidator()).FetchOngoing(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Data, 2, "the row without an id is dropped")
	assert.EqualValues(t, 42, p.Data[0].ID)
	assert.False(t, p.Data[0].Temperature.Valid())
	assert.False(t, p.Data[0].BuyerName.Valid)
	assert.EqualValues(t, 7, p.Data[1].ID)
	assert.Equal(t, 4.5, p.Data[1].Temperature.Value.Float64)
	assert.False(t, p.Marker.IsZero())
}

func TestFetchOngoingMissingCollection(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{}`))

	p, err := NewShipment(f.up, f.conf, util.NewValidator()).FetchOngoing(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, p.Data)
	assert.Empty(t, p.Data)
	assert.True(t, p.Marker.IsZero())
}

func TestFetchDetail(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard/shipment/42/" {
			respond(http.StatusNotFound, `{"error": "not found"}`)(w, r)
			return
		}
		respond(http.StatusOK, `{"contract_id": 42, "product_name": "VaccineX", "buyer_email": "b@example.com", "latest_temp": 3.1}`)(w, r)
	}))
	repo := NewShipment(f.up, f.conf, util.NewValidator())

	d, err := repo.FetchDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", d.BuyerEmail.String.String)
	assert.Equal(t, 3.1, d.LatestTemp.Value.Float64)

	_, err = repo.FetchDetail(context.Background(), 9)
	assert.ErrorIs(t, err, poller.ErrStatus)
}

func TestPostAction(t *testing.T) {
	var form url.Values
	var token, referer string
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		form = r.PostForm
		token = r.Header.Get(HeaderCSRFToken)
		referer = r.Header.Get("Referer")
		respond(http.StatusOK, `{"message": "Contract #42 marked complete."}`)(w, r)
	}))

	msg, err := NewShipment(f.up, f.conf, util.NewValidator()).PostAction(context.Background(), 42, ActionComplete, "csrf-token")
	require.NoError(t, err)
	assert.Equal(t, "Contract #42 marked complete.", msg)
	assert.Equal(t, ActionComplete, form.Get("action"))
	assert.Equal(t, "csrf-token", token)
	assert.Contains(t, referer, "/dashboard/ongoing/data/")
}

func TestPostActionRejected(t *testing.T) {
	f := newFixture(t, respond(http.StatusForbidden, `{"error": "CSRF verification failed"}`))

	_, err := NewShipment(f.up, f.conf, util.NewValidator()).PostAction(context.Background(), 42, ActionRefund, "stale")
	require.Error(t, err)
	assert.ErrorIs(t, err, poller.ErrStatus)
	assert.Contains(t, err.Error(), "CSRF verification failed")
}

func TestPostActionPlainTextResponse(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "  done  \n")
	}))

	msg, err := NewShipment(f.up, f.conf, util.NewValidator()).PostAction(context.Background(), 5, ActionRefund, "t")
	require.NoError(t, err)
	assert.Equal(t, "done", msg)
}

func TestAlertFetchShapes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   int
		marker bool
	}{
		{"object", `{"version": 3, "alerts": [{"severity": "critical", "message": "Freezer 3"}, {"severity": "info"}]}`, 1, true},
		{"bare array", `[{"severity": "warning", "message": "Battery low"}]`, 1, false},
		{"missing", `{}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, respond(http.StatusOK, tt.body))
			p, err := NewAlert(f.up, f.conf, util.NewValidator()).Fetch(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, p.Data)
			assert.Len(t, p.Data, tt.want)
			assert.Equal(t, tt.marker, !p.Marker.IsZero())
		})
	}
}

func TestResponseMessage(t *testing.T) {
	assert.Equal(t, "ok", responseMessage([]byte(`{"message": "ok"}`)))
	assert.Equal(t, "bad", responseMessage([]byte(`{"error": "bad"}`)))
	assert.Empty(t, responseMessage([]byte(`{"status": 1}`)))
	assert.Empty(t, responseMessage([]byte("<html></html>")))
	assert.Empty(t, responseMessage(nil))
}
