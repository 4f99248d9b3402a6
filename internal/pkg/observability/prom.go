package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "dashsync"
)

var (
	ChannelPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "channel", "polls_total"),
		Help: "Outcome of channel polls and accepts",
	}, []string{"channel", "result"})
	ChannelFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "channel", "fetch_duration_seconds"),
		Help:    "Duration of upstream fetches in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"channel"})
	ChannelConsecutiveFailures = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "channel", "consecutive_failures"),
		Help: "Consecutive failed fetches of a channel",
	}, []string{"channel"})
	CommandExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "command", "executions_total"),
		Help: "Outcome of mutating commands",
	}, []string{"command", "result"})
)
