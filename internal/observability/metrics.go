// Package observability collects the Prometheus metrics for the form
// service: the HTTP request metrics plus the session traffic counters.
package observability

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics gathers the Prometheus collectors for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	messagesReceived *prometheus.CounterVec
	messagesDropped  *prometheus.CounterVec
	pushesSent       *prometheus.CounterVec
	surfacesAttached prometheus.Gauge
	surfaceAttaches  prometheus.Counter
}

// NewMetrics initialises the registry and the base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "formdesk_http_requests_total",
		Help: "HTTP requests partitioned by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "formdesk_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "formdesk_messages_received_total",
		Help: "Protocol messages received from surfaces, by type.",
	}, []string{"type"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "formdesk_messages_dropped_total",
		Help: "Frames discarded at a session boundary, by reason.",
	}, []string{"reason"})
	pushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "formdesk_pushes_sent_total",
		Help: "Push frames delivered to detached surfaces, by type.",
	}, []string{"type"})
	attached := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "formdesk_surfaces_attached",
		Help: "Detached surfaces currently attached to a session.",
	})
	attaches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "formdesk_surface_attaches_total",
		Help: "Total successful surface attachments.",
	})
	registry.MustRegister(requests, duration, received, dropped, pushes, attached, attaches)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		messagesReceived: received,
		messagesDropped:  dropped,
		pushesSent:       pushes,
		surfacesAttached: attached,
		surfaceAttaches:  attaches,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records the request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// MessageReceived counts one inbound protocol message.
func (m *Metrics) MessageReceived(msgType string) {
	if m == nil {
		return
	}
	m.messagesReceived.WithLabelValues(msgType).Inc()
}

// MessageDropped counts one frame discarded at a session boundary.
func (m *Metrics) MessageDropped(reason string) {
	if m == nil {
		return
	}
	m.messagesDropped.WithLabelValues(reason).Inc()
}

// PushSent counts one push frame delivered to a surface.
func (m *Metrics) PushSent(pushType string) {
	if m == nil {
		return
	}
	m.pushesSent.WithLabelValues(pushType).Inc()
}

// SurfaceAttached records a successful surface attachment.
func (m *Metrics) SurfaceAttached() {
	if m == nil {
		return
	}
	m.surfacesAttached.Inc()
	m.surfaceAttaches.Inc()
}

// SurfaceDetached records a surface going away.
func (m *Metrics) SurfaceDetached() {
	if m == nil {
		return
	}
	m.surfacesAttached.Dec()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working through the wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
