package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus instruments.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	SessionsTotal  prometheus.Counter

	EventsTotal   prometheus.Counter
	EventDuration prometheus.Histogram

	FlushesTotal  prometheus.Counter
	FlushDuration prometheus.Histogram
	PatchesSent   prometheus.Counter
	PatchBytes    prometheus.Counter

	UpdateLoopAborts    prometheus.Counter
	HydrationMismatches prometheus.Counter
	RenderFailures      prometheus.Counter
	WSErrors            *prometheus.CounterVec
}

// NewMetrics registers the server metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	ns := "vireo"

	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "active_sessions",
			Help:      "Number of live WebSocket sessions",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "sessions_total",
			Help:      "Total sessions ever created",
		}),
		EventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "events_total",
			Help:      "Total client events dispatched",
		}),
		EventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "event_duration_seconds",
			Help:      "Event handler execution time in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		FlushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "flushes_total",
			Help:      "Total scheduler flushes that produced patches",
		}),
		FlushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "flush_duration_seconds",
			Help:      "Time to encode and enqueue one patches frame",
			Buckets:   prometheus.DefBuckets,
		}),
		PatchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "patches_sent_total",
			Help:      "Total patches sent to clients",
		}),
		PatchBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "patch_bytes_total",
			Help:      "Total encoded patch bytes sent to clients",
		}),
		UpdateLoopAborts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "update_loop_aborts_total",
			Help:      "Watchers abandoned for exceeding the re-enqueue budget",
		}),
		HydrationMismatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "hydration_mismatches_total",
			Help:      "Hydration attempts that fell back to client rendering",
		}),
		RenderFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "render_failures_total",
			Help:      "Render passes that errored and kept the previous tree",
		}),
		WSErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "websocket_errors_total",
			Help:      "WebSocket errors by type",
		}, []string{"type"}),
	}
}
