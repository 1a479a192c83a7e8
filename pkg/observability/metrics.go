/*
Package observability provides Prometheus instrumentation for the session
engine: per-operation event counters, push/skip counters for the
change-detection cycle, and render latency.
*/
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	EventsTotal    *prometheus.CounterVec
	UpdatesPushed  prometheus.Counter
	UpdatesSkipped prometheus.Counter
	RenderDuration prometheus.Histogram
}

// NewMetrics creates and registers the engine collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_events_total",
				Help: "Inbound surface events processed, by operation and status.",
			},
			[]string{"operation", "status"},
		),
		UpdatesPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marquee_updates_pushed_total",
			Help: "Surface updates pushed because the rendered document changed.",
		}),
		UpdatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marquee_updates_skipped_total",
			Help: "Renders whose document was identical to the previous one.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marquee_render_duration_seconds",
			Help:    "Duration of full two-pass renders.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.EventsTotal, m.UpdatesPushed, m.UpdatesSkipped, m.RenderDuration)
	return m
}

// ObserveEvent records the outcome of one engine operation.
func (m *Metrics) ObserveEvent(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.EventsTotal.WithLabelValues(operation, status).Inc()
}

// ObservePush records whether a render resulted in a push.
func (m *Metrics) ObservePush(pushed bool) {
	if m == nil {
		return
	}
	if pushed {
		m.UpdatesPushed.Inc()
	} else {
		m.UpdatesSkipped.Inc()
	}
}

// ObserveRender records the duration of a render cycle.
func (m *Metrics) ObserveRender(start time.Time) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(time.Since(start).Seconds())
}
