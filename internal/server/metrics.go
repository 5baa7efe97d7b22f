package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/pinelocal"
)

// PrometheusCollector implements pinelocal.MetricsCollector and records HTTP
// request metrics.
type PrometheusCollector struct {
	registry *prometheus.Registry

	opLatency       *prometheus.HistogramVec
	upsertedVectors prometheus.Counter
	queryTopK       prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	rateLimited     prometheus.Counter
}

var _ pinelocal.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector registers its metrics with reg. A nil reg creates a
// private registry that also carries the Go and process collectors.
func NewPrometheusCollector(reg *prometheus.Registry) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	p := &PrometheusCollector{
		registry: reg,
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinelocal_operation_latency_seconds",
			Help:    "Latency of index operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		upsertedVectors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pinelocal_upserted_vectors_total",
			Help: "Total vectors written by successful upserts",
		}),
		queryTopK: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinelocal_query_top_k",
			Help:    "Requested topK of queries",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 500, 1000},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pinelocal_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinelocal_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pinelocal_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}

	reg.MustRegister(
		p.opLatency,
		p.upsertedVectors,
		p.queryTopK,
		p.httpRequests,
		p.httpLatency,
		p.rateLimited,
	)
	return p
}

// Registry returns the registry the metrics are registered with.
func (p *PrometheusCollector) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordCreateIndex implements pinelocal.MetricsCollector.
func (p *PrometheusCollector) RecordCreateIndex(d time.Duration, err error) {
	p.opLatency.WithLabelValues("create_index", status(err)).Observe(d.Seconds())
}

// RecordDeleteIndex implements pinelocal.MetricsCollector.
func (p *PrometheusCollector) RecordDeleteIndex(d time.Duration, err error) {
	p.opLatency.WithLabelValues("delete_index", status(err)).Observe(d.Seconds())
}

// RecordUpsert implements pinelocal.MetricsCollector.
func (p *PrometheusCollector) RecordUpsert(count int, d time.Duration, err error) {
	p.opLatency.WithLabelValues("upsert", status(err)).Observe(d.Seconds())
	if err == nil {
		p.upsertedVectors.Add(float64(count))
	}
}

// RecordQuery implements pinelocal.MetricsCollector.
func (p *PrometheusCollector) RecordQuery(k int, d time.Duration, err error) {
	p.opLatency.WithLabelValues("query", status(err)).Observe(d.Seconds())
	if err == nil {
		p.queryTopK.Observe(float64(k))
	}
}

func (p *PrometheusCollector) recordRequest(method, route string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
