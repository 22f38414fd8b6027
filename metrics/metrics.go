package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP records request counts and latencies.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP registers the HTTP collectors on reg. A nil reg yields a no-op recorder.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	if reg == nil {
		return &HTTP{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method and status code.",
	}, []string{"method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	reg.MustRegister(requests, duration)
	return &HTTP{requests: requests, duration: duration}
}

func (h *HTTP) Observe(method string, code int, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	h.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	h.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Orders counts order lifecycle events.
type Orders struct {
	cancelled     prometheus.Counter
	restored      prometheus.Counter
	statusUpdates *prometheus.CounterVec
}

func NewOrders(reg prometheus.Registerer) *Orders {
	if reg == nil {
		return &Orders{}
	}
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Marketplace orders cancelled by their buyer.",
	})
	restored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_restored_units_total",
		Help: "Product units returned to stock by cancellations.",
	})
	statusUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Order status changes by order family.",
	}, []string{"family"})
	reg.MustRegister(cancelled, restored, statusUpdates)
	return &Orders{cancelled: cancelled, restored: restored, statusUpdates: statusUpdates}
}

func (o *Orders) Cancelled() {
	if o == nil || o.cancelled == nil {
		return
	}
	o.cancelled.Inc()
}

func (o *Orders) Restored(units int) {
	if o == nil || o.restored == nil || units <= 0 {
		return
	}
	o.restored.Add(float64(units))
}

func (o *Orders) StatusUpdated(family string) {
	if o == nil || o.statusUpdates == nil {
		return
	}
	if family == "" {
		family = "unknown"
	}
	o.statusUpdates.WithLabelValues(family).Inc()
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
