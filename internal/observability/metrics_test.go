package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets/:id", "GET", 200, 15*time.Millisecond)
	m.RecordError("/tickets/:id", "GET", "NOT_FOUND")
	m.TicketCreated()
	m.AuthRejected("expired")
	m.OwnerCacheLookup(true)
	m.OwnerCacheLookup(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`helpdesk_http_requests_total{method="GET",route="/tickets/:id",status="200"} 1`,
		`helpdesk_http_errors_total{code="NOT_FOUND",method="GET",route="/tickets/:id"} 1`,
		`helpdesk_tickets_created_total 1`,
		`helpdesk_auth_rejections_total{reason="expired"} 1`,
		`helpdesk_owner_cache_hits_total 1`,
		`helpdesk_owner_cache_misses_total 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.TicketCreated()
	m.TicketUpdated()
	m.MessageAppended()
	m.ClassifierFailed()
	m.AuthRejected("x")
	m.OwnerCacheLookup(true)
	m.EventForwardFailed("redis", "error")
	m.ObservePool(func() PoolStats { return PoolStats{} })
}

func TestNewMetricsIndependentRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	if a.Registry() == b.Registry() {
		t.Fatal("expected separate registries")
	}
}

func TestPoolAndForwardMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObservePool(func() PoolStats { return PoolStats{Total: 5, Idle: 3, Acquired: 2} })
	m.EventForwardFailed("redis", "dropped")
	m.EventForwardFailed("redis", "dropped")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		"helpdesk_db_pool_connections 5",
		"helpdesk_db_pool_idle_connections 3",
		"helpdesk_db_pool_acquired_connections 2",
		`helpdesk_event_forward_failures_total{forwarder="redis",reason="dropped"} 2`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
