package appconfig

import (
	"time"

	"exusiai.dev/dashsync/internal/app/appcontext"
)

type ConfigSpec struct {
	// ServiceAddress is the listen address of the dashboard host API.
	ServiceAddress string `required:"true" split_words:"true" default:"localhost:9020"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// LogFile is the rotated log file. Leaving it empty disables file logging.
	LogFile string `split_words:"true" default:"logs/app.log"`

	LogFileMaxSizeMB  int `split_words:"true" default:"100"`
	LogFileMaxBackups int `split_words:"true" default:"5"`

	// TrustedProxies is a list of trusted proxies that are trusted to report a real IP via the X-Forwarded-For header.
	TrustedProxies []string `required:"true" split_words:"true" default:"::1,127.0.0.1,10.0.0.0/8"`

	// DevMode to indicate development mode. When true, trace logging and pprof are enabled.
	DevMode bool `split_words:"true"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// UpstreamBaseURL is the dashboard backend every channel polls.
	UpstreamBaseURL string `required:"true" split_words:"true" default:"http://localhost:8000"`

	// UpstreamSessionID and UpstreamCSRFToken seed the cookie jar with an already
	// authenticated session. Mutating commands read the anti-forgery token from the jar.
	UpstreamSessionID string `split_words:"true"`
	UpstreamCSRFToken string `split_words:"true"`

	UpstreamUserAgent string `split_words:"true" default:"dashsync"`

	// Upstream endpoint paths. {id} is replaced by the shipment identifier.
	MetricsPath string `split_words:"true" default:"/dashboard/data/"`
	OngoingPath string `split_words:"true" default:"/dashboard/ongoing/data/"`
	AlertsPath  string `split_words:"true" default:"/dashboard/alerts/data/"`
	DetailPath  string `split_words:"true" default:"/dashboard/shipment/{id}/"`
	ActionPath  string `split_words:"true" default:"/dashboard/contract/{id}/action/"`

	MetricsInterval time.Duration `split_words:"true" default:"30s"`
	OngoingInterval time.Duration `split_words:"true" default:"10s"`
	AlertsInterval  time.Duration `split_words:"true" default:"60s"`
	ChartInterval   time.Duration `split_words:"true" default:"3s"`

	// FetchTimeout bounds every channel fetch. A channel stays in flight for at most this long.
	FetchTimeout time.Duration `split_words:"true" default:"8s"`

	// CommandTimeout bounds a mutating command, including the refresh that follows it.
	CommandTimeout time.Duration `split_words:"true" default:"15s"`

	// Route predicates are expr expressions over the current path, bound to `route`.
	// An empty predicate keeps the channel active on every route.
	RouteMetrics string `split_words:"true" default:"route contains 'overview' || route contains 'dashboard'"`
	RouteOngoing string `split_words:"true" default:"route contains 'ongoing'"`
	RouteAlerts  string `split_words:"true"`
	RouteChart   string `split_words:"true" default:"route contains 'overview' || route contains 'dashboard'"`

	// InitialRoute is the route the engine navigates to on start.
	InitialRoute string `split_words:"true" default:"/dashboard/"`

	// ChartMode is either "combined", where the metrics feed carries the chart
	// arrays, or "simulated", where points are generated locally every ChartInterval.
	ChartMode string `split_words:"true" default:"combined"`

	ChartCapacity int `split_words:"true" default:"10"`

	// ChartSimulatedSeries lists the simulated series as name:baseline pairs.
	ChartSimulatedSeries SeriesSeeds `split_words:"true" default:"Temperature:4"`

	DetailCacheTTL time.Duration `split_words:"true" default:"15s"`

	// ConfirmTokenTTL is how long a confirmation token issued by the host API stays valid.
	ConfirmTokenTTL time.Duration `split_words:"true" default:"2m"`

	NotificationLimit int `split_words:"true" default:"50"`

	// HTTPServerShutdownTimeout is the timeout for the HTTP server to shutdown gracefully.
	HTTPServerShutdownTimeout time.Duration `split_words:"true" default:"30s"`
}

type Config struct {
	// ConfigSpec is the configuration specification injected to the config.
	ConfigSpec

	// AppContext is the context of the application.
	AppContext appcontext.Ctx
}
