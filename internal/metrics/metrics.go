// Package metrics exposes Prometheus collectors for notification processing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaharia-lab/emailnotify/internal/eventbus"
	"github.com/shaharia-lab/emailnotify/internal/notification"
)

const namespace = "emailnotify"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	deliveryDuration prometheus.Histogram
	failures         *prometheus.CounterVec
}

// New creates a registry with the process and Go collectors plus the
// notification collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Notification requests by reported status.",
		}, []string{"status"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Relay submissions by result.",
		}, []string{"result"}),
		deliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Time spent in a single relay submission.",
			Buckets:   prometheus.DefBuckets,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed requests by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.deliveries, m.deliveryDuration, m.failures,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Listener returns an eventbus listener that updates the collectors.
func (m *Metrics) Listener() eventbus.Listener {
	return func(e eventbus.Event) {
		switch e.Type {
		case notification.EventStarted:
			m.requests.WithLabelValues(string(notification.StatusStarted)).Inc()
		case notification.EventCompleted:
			m.requests.WithLabelValues(string(notification.StatusCompleted)).Inc()
		case notification.EventFailed:
			m.requests.WithLabelValues(string(notification.StatusFailed)).Inc()
			m.failures.WithLabelValues(e.Payload["kind"]).Inc()
		case notification.EventDeliverySent:
			m.deliveries.WithLabelValues("sent").Inc()
			m.observeDuration(e)
		case notification.EventDeliveryFailed:
			m.deliveries.WithLabelValues("failed").Inc()
			m.observeDuration(e)
		}
	}
}

func (m *Metrics) observeDuration(e eventbus.Event) {
	ms, err := strconv.ParseInt(e.Payload["duration_ms"], 10, 64)
	if err != nil {
		return
	}
	m.deliveryDuration.Observe((time.Duration(ms) * time.Millisecond).Seconds())
}
