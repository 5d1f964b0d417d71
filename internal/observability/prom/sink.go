// Package prom exposes the engine's metrics in the Prometheus exposition format.
package prom

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/placementhub/placement-engine/internal/observability/statsd"
)

const namespace = "placement"

type counter struct {
	vec    *prometheus.CounterVec
	labels []string
}

type histogram struct {
	vec    *prometheus.HistogramVec
	labels []string
}

// Sink maps the engine's statsd metric names onto registered Prometheus
// collectors. Names it does not know are dropped.
type Sink struct {
	registry   *prometheus.Registry
	counters   map[string]counter
	histograms map[string]histogram
}

var _ statsd.Sink = (*Sink)(nil)

// NewSink registers the engine's collectors on a fresh registry together with
// the Go runtime and process collectors.
func NewSink() *Sink {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	newCounter := func(name, help string, labels ...string) counter {
		return counter{
			vec: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace, Name: name, Help: help,
			}, labels),
			labels: labels,
		}
	}
	newHistogram := func(name, help string, labels ...string) histogram {
		return histogram{
			vec: factory.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace, Name: name, Help: help,
				Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
			}, labels),
			labels: labels,
		}
	}

	return &Sink{
		registry: reg,
		counters: map[string]counter{
			"transition": newCounter("transitions_total",
				"State-machine transition attempts.", "machine", "to", "result", "error_class"),
			"notification.enqueue": newCounter("notifications_enqueued_total",
				"Notification enqueue attempts.", "kind", "result", "error_class"),
			"identity.resolve": newCounter("identity_resolutions_total",
				"Bearer token resolutions.", "result", "cache", "error_class"),
			"http.request": newCounter("http_requests_total",
				"HTTP requests served.", "method", "route", "status"),
		},
		histograms: map[string]histogram{
			"transition.duration": newHistogram("transition_duration_ms",
				"Transition latency in milliseconds.", "machine", "to", "result"),
			"http.request.duration": newHistogram("http_request_duration_ms",
				"HTTP request latency in milliseconds.", "method", "route"),
		},
	}
}

// Count implements statsd.Sink.
func (s *Sink) Count(name string, value int64, tags map[string]string) {
	c, ok := s.counters[name]
	if !ok || value < 0 {
		return
	}
	c.vec.WithLabelValues(labelValues(c.labels, tags)...).Add(float64(value))
}

// Gauge implements statsd.Sink. The engine reports no gauges.
func (s *Sink) Gauge(string, float64, map[string]string) {}

// Timing implements statsd.Sink.
func (s *Sink) Timing(name string, value time.Duration, tags map[string]string) {
	h, ok := s.histograms[name]
	if !ok {
		return
	}
	h.vec.WithLabelValues(labelValues(h.labels, tags)...).Observe(float64(value.Microseconds()) / 1000.0)
}

// Handler serves the registry for scraping.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Registry returns the underlying registry.
func (s *Sink) Registry() *prometheus.Registry { return s.registry }

func labelValues(names []string, tags map[string]string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = tags[n]
	}
	return out
}
