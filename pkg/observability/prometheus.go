package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics.
const metricsNamespace = "flexgantt"

// PrometheusHooks implements PipelineHooks, CacheHooks and HTTPHooks by
// recording Prometheus metrics. Create it once with [NewPrometheusHooks] and
// register it with the Set*Hooks functions.
type PrometheusHooks struct {
	// BuildsTotal counts row group builds. Labels: status (ok, error)
	BuildsTotal *prometheus.CounterVec

	// BuildDuration measures row group build time. Labels: status
	BuildDuration *prometheus.HistogramVec

	// RowsBuilt observes the number of rows per build.
	RowsBuilt prometheus.Histogram

	// OrphanedTasks counts tasks that matched no row.
	OrphanedTasks prometheus.Counter

	// ReportsTotal counts report builds. Labels: status
	ReportsTotal *prometheus.CounterVec

	// CacheOps counts cache operations. Labels: kind (rows, report), op (hit, miss, set)
	CacheOps *prometheus.CounterVec

	// CacheBytes counts bytes written to the cache. Labels: kind
	CacheBytes *prometheus.CounterVec

	// RequestsInFlight tracks requests being served.
	RequestsInFlight prometheus.Gauge

	// RequestsTotal counts API responses. Labels: method, route, code
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures API latency. Labels: method, route
	RequestDuration *prometheus.HistogramVec

	// RequestErrors counts handler failures. Labels: method, route
	RequestErrors *prometheus.CounterVec
}

// NewPrometheusHooks creates the metrics and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer. Registering twice with the
// same registerer panics.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PrometheusHooks{
		BuildsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gantt",
			Name:      "builds_total",
			Help:      "Total number of row group builds by status",
		}, []string{"status"}),
		BuildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "gantt",
			Name:      "build_duration_seconds",
			Help:      "Row group build duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"status"}),
		RowsBuilt: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "gantt",
			Name:      "rows_per_build",
			Help:      "Number of rows produced by a row group build",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		OrphanedTasks: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gantt",
			Name:      "orphaned_tasks_total",
			Help:      "Tasks that lacked a grouping attribute and matched no row",
		}),
		ReportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "gantt",
			Name:      "reports_total",
			Help:      "Total number of report builds by status",
		}, []string{"status"}),
		CacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by key kind and result",
		}, []string{"kind", "op"}),
		CacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key kind",
		}, []string{"kind"}),
		RequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served",
		}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API responses by method, route and status code",
		}, []string{"method", "route", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_errors_total",
			Help:      "Handler failures by method and route",
		}, []string{"method", "route"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// PipelineHooks
// =============================================================================

func (h *PrometheusHooks) OnBuildStart(context.Context, string, int, int) {}

func (h *PrometheusHooks) OnBuildComplete(_ context.Context, _ string, rows, orphans int, d time.Duration, err error) {
	s := status(err)
	h.BuildsTotal.WithLabelValues(s).Inc()
	h.BuildDuration.WithLabelValues(s).Observe(d.Seconds())
	if err == nil {
		h.RowsBuilt.Observe(float64(rows))
		h.OrphanedTasks.Add(float64(orphans))
	}
}

func (h *PrometheusHooks) OnReportStart(context.Context, int) {}

func (h *PrometheusHooks) OnReportComplete(_ context.Context, _ int, _ time.Duration, err error) {
	h.ReportsTotal.WithLabelValues(status(err)).Inc()
}

// =============================================================================
// CacheHooks
// =============================================================================

func (h *PrometheusHooks) OnCacheHit(_ context.Context, kind string) {
	h.CacheOps.WithLabelValues(kind, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, kind string) {
	h.CacheOps.WithLabelValues(kind, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.CacheOps.WithLabelValues(kind, "set").Inc()
	h.CacheBytes.WithLabelValues(kind).Add(float64(size))
}

// =============================================================================
// HTTPHooks
// =============================================================================

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.RequestsInFlight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.RequestsInFlight.Dec()
	h.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, method, route string, _ error) {
	h.RequestErrors.WithLabelValues(method, route).Inc()
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
