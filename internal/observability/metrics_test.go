package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/forms/{formID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/forms/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := scrape(t, m)
	require.Contains(t, body, `formdesk_http_requests_total{code="200",route="/api/v1/forms/{formID}"} 1`)
	require.Contains(t, body, "formdesk_http_request_duration_seconds")
}

func TestSessionCounters(t *testing.T) {
	m := NewMetrics()
	m.MessageReceived("SET_DATE")
	m.MessageReceived("SET_DATE")
	m.MessageDropped("malformed")
	m.PushSent("PUSH_ITEMS")
	m.SurfaceAttached()
	m.SurfaceAttached()
	m.SurfaceDetached()

	body := scrape(t, m)
	require.Contains(t, body, `formdesk_messages_received_total{type="SET_DATE"} 2`)
	require.Contains(t, body, `formdesk_messages_dropped_total{reason="malformed"} 1`)
	require.Contains(t, body, `formdesk_pushes_sent_total{type="PUSH_ITEMS"} 1`)
	require.Contains(t, body, "formdesk_surfaces_attached 1")
	require.Contains(t, body, "formdesk_surface_attaches_total 2")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.MessageReceived("SET_DATE")
	m.MessageDropped("x")
	m.PushSent("y")
	m.SurfaceAttached()
	m.SurfaceDetached()

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutePatternFallback(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raw", nil))

	body := scrape(t, m)
	require.True(t, strings.Contains(body, `route="unknown"`))
}
