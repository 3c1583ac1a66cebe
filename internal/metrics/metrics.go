// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// All collectors live on a private registry so tests and embedded servers
// never collide with the global default registry.
//
//	m := metrics.New()
//	m.Register()            // install as observability hooks
//	r.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/shopfloor/pkg/observability"
)

const namespace = "shopfloor"

// Metrics holds every collector exported by shopfloor.
type Metrics struct {
	registry *prometheus.Registry

	gesturesStarted *prometheus.CounterVec
	gesturesEnded   *prometheus.CounterVec
	gestureDuration *prometheus.HistogramVec
	selections      prometheus.Counter

	placed   *prometheus.CounterVec
	refused  *prometheus.CounterVec
	removed  prometheus.Counter
	itemsNow prometheus.Gauge

	snapshotOps      *prometheus.CounterVec
	snapshotDuration *prometheus.HistogramVec
	snapshotBytes    prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gesturesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gesture", Name: "started_total",
			Help: "Gestures started, by kind (pan, drag).",
		}, []string{"kind"}),
		gesturesEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gesture", Name: "ended_total",
			Help: "Gestures ended, by kind and whether they were canceled.",
		}, []string{"kind", "canceled"}),
		gestureDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "gesture", Name: "duration_seconds",
			Help:    "Time from pointer down to release or cancel.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		selections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "gesture", Name: "selections_total",
			Help: "Item selections outside edit mode.",
		}),
		placed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "placement", Name: "placed_total",
			Help: "Items placed, by kind.",
		}, []string{"kind"}),
		refused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "placement", Name: "refused_total",
			Help: "Placements refused, by error code.",
		}, []string{"code"}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "placement", Name: "removed_total",
			Help: "Items removed.",
		}),
		itemsNow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "layout", Name: "items",
			Help: "Items on the layout after the last request.",
		}),
		snapshotOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "snapshot", Name: "operations_total",
			Help: "Snapshot store operations, by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
		snapshotDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "snapshot", Name: "duration_seconds",
			Help:    "Snapshot store latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "op"}),
		snapshotBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "snapshot", Name: "size_bytes",
			Help: "Encoded size of the last saved snapshot.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gesturesStarted, m.gesturesEnded, m.gestureDuration, m.selections,
		m.placed, m.refused, m.removed, m.itemsNow,
		m.snapshotOps, m.snapshotDuration, m.snapshotBytes,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Register installs m as the process-wide observability hooks.
func (m *Metrics) Register() {
	observability.SetGestureHooks(gestureHooks{m})
	observability.SetPlacementHooks(placementHooks{m})
	observability.SetStoreHooks(storeHooks{m})
	observability.SetHTTPHooks(httpHooks{m})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// SetItems records the current item count.
func (m *Metrics) SetItems(n int) { m.itemsNow.Set(float64(n)) }

type gestureHooks struct{ m *Metrics }

func (h gestureHooks) OnGestureStart(kind, uid string) {
	h.m.gesturesStarted.WithLabelValues(kind).Inc()
}

func (h gestureHooks) OnGestureEnd(kind string, canceled bool, d time.Duration) {
	h.m.gesturesEnded.WithLabelValues(kind, strconv.FormatBool(canceled)).Inc()
	h.m.gestureDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (h gestureHooks) OnSelect(uid string) { h.m.selections.Inc() }

type placementHooks struct{ m *Metrics }

func (h placementHooks) OnPlaced(kind string)  { h.m.placed.WithLabelValues(kind).Inc() }
func (h placementHooks) OnRefused(code string) { h.m.refused.WithLabelValues(code).Inc() }
func (h placementHooks) OnRemoved()            { h.m.removed.Inc() }

type storeHooks struct{ m *Metrics }

func (h storeHooks) OnSnapshotLoad(_ context.Context, backend string, found bool, d time.Duration, err error) {
	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case !found:
		result = "miss"
	}
	h.m.snapshotOps.WithLabelValues(backend, "load", result).Inc()
	h.m.snapshotDuration.WithLabelValues(backend, "load").Observe(d.Seconds())
}

func (h storeHooks) OnSnapshotSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		h.m.snapshotBytes.Set(float64(size))
	}
	h.m.snapshotOps.WithLabelValues(backend, "save", result).Inc()
	h.m.snapshotDuration.WithLabelValues(backend, "save").Observe(d.Seconds())
}

type httpHooks struct{ m *Metrics }

func (h httpHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
