// Package prom implements the observability hooks with Prometheus metrics.
//
// Create a [Metrics] on a registry and pass its hooks to the observability
// package at startup:
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	m.Register()
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/wzrd/pkg/observability"
)

const namespace = "wzrd"

// Metrics holds the collectors fed by the hooks.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	nodes         *prometheus.HistogramVec
	fallbacks     prometheus.Counter
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Failed pipeline stages.",
		}, []string{"stage"}),
		nodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Node counts seen by pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"stage"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_fallbacks_total",
			Help:      "Generations that produced a fallback string.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.stageDuration, m.stageErrors, m.nodes, m.fallbacks,
		m.cacheOps, m.cacheBytes, m.httpRequests, m.httpDuration,
	)
	return m
}

// Register installs m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(pipelineHooks{m})
	observability.SetCacheHooks(cacheHooks{m})
	observability.SetHTTPHooks(httpHooks{m})
}

func (m *Metrics) finish(stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

type pipelineHooks struct{ m *Metrics }

func (h pipelineHooks) OnImportStart(context.Context, int) {}

func (h pipelineHooks) OnImportComplete(_ context.Context, nodes int, d time.Duration, err error) {
	h.m.finish("import", d, err)
	if err == nil {
		h.m.nodes.WithLabelValues("import").Observe(float64(nodes))
	}
}

func (h pipelineHooks) OnGenerateStart(_ context.Context, nodes int) {
	h.m.nodes.WithLabelValues("generate").Observe(float64(nodes))
}

func (h pipelineHooks) OnGenerateComplete(_ context.Context, _ int, fallback bool, d time.Duration) {
	h.m.finish("generate", d, nil)
	if fallback {
		h.m.fallbacks.Inc()
	}
}

func (h pipelineHooks) OnLayoutStart(_ context.Context, nodes int) {
	h.m.nodes.WithLabelValues("layout").Observe(float64(nodes))
}

func (h pipelineHooks) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.m.finish("layout", d, err)
}

func (h pipelineHooks) OnRenderStart(context.Context, []string) {}

func (h pipelineHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.m.finish("render", d, err)
}

type cacheHooks struct{ m *Metrics }

func (h cacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.m.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

type httpHooks struct{ m *Metrics }

func (h httpHooks) OnRequest(context.Context, string, string) {}

func (h httpHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = pipelineHooks{}
	_ observability.CacheHooks    = cacheHooks{}
	_ observability.HTTPHooks     = httpHooks{}
)
