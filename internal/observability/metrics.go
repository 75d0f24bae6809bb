package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one process. Each instance owns
// its registry so tests can build several side by side.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec

	ticketsCreated     prometheus.Counter
	ticketsUpdated     prometheus.Counter
	messagesAppended   prometheus.Counter
	classifierFailures prometheus.Counter
	authRejections     *prometheus.CounterVec
	ownerCacheHits     prometheus.Counter
	ownerCacheMisses   prometheus.Counter
	forwardFailures    *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_errors_total",
			Help: "Rendered error responses by route and error code.",
		}, []string{"method", "route", "code"}),
		ticketsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_tickets_created_total",
			Help: "Tickets created.",
		}),
		ticketsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_tickets_updated_total",
			Help: "Tickets updated by administrators.",
		}),
		messagesAppended: f.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_ticket_messages_total",
			Help: "Messages appended to ticket threads.",
		}),
		classifierFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_classifier_failures_total",
			Help: "Ticket creations rejected because the classifier failed.",
		}),
		authRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_auth_rejections_total",
			Help: "Rejected bearer tokens and logins by reason.",
		}, []string{"reason"}),
		ownerCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_owner_cache_hits_total",
			Help: "Ticket owner cache hits.",
		}),
		ownerCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_owner_cache_misses_total",
			Help: "Ticket owner cache misses.",
		}),
		forwardFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_event_forward_failures_total",
			Help: "Events not delivered to a broker, by forwarder and reason.",
		}, []string{"forwarder", "reason"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts a rendered error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

// TicketCreated increments the created counter.
func (m *Metrics) TicketCreated() {
	if m != nil {
		m.ticketsCreated.Inc()
	}
}

// TicketUpdated increments the updated counter.
func (m *Metrics) TicketUpdated() {
	if m != nil {
		m.ticketsUpdated.Inc()
	}
}

// MessageAppended increments the message counter.
func (m *Metrics) MessageAppended() {
	if m != nil {
		m.messagesAppended.Inc()
	}
}

// ClassifierFailed increments the classifier failure counter.
func (m *Metrics) ClassifierFailed() {
	if m != nil {
		m.classifierFailures.Inc()
	}
}

// AuthRejected counts a rejected token or login attempt.
func (m *Metrics) AuthRejected(reason string) {
	if m != nil {
		m.authRejections.WithLabelValues(reason).Inc()
	}
}

// OwnerCacheLookup records a hit or miss of the owner cache.
func (m *Metrics) OwnerCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ownerCacheHits.Inc()
		return
	}
	m.ownerCacheMisses.Inc()
}

// PoolStats is a snapshot of database connection pool usage.
type PoolStats struct {
	Total    int32
	Idle     int32
	Acquired int32
}

// ObservePool exports connection pool gauges read from stats at scrape time.
// Call it once per Metrics.
func (m *Metrics) ObservePool(stats func() PoolStats) {
	if m == nil || stats == nil {
		return
	}
	f := promauto.With(m.registry)
	gauges := []struct {
		name, help string
		pick       func(PoolStats) int32
	}{
		{"helpdesk_db_pool_connections", "Open database connections.", func(s PoolStats) int32 { return s.Total }},
		{"helpdesk_db_pool_idle_connections", "Idle database connections.", func(s PoolStats) int32 { return s.Idle }},
		{"helpdesk_db_pool_acquired_connections", "Database connections in use.", func(s PoolStats) int32 { return s.Acquired }},
	}
	for _, g := range gauges {
		pick := g.pick
		f.NewGaugeFunc(prometheus.GaugeOpts{Name: g.name, Help: g.help}, func() float64 {
			return float64(pick(stats()))
		})
	}
}

// EventForwardFailed counts events a broker forwarder dropped or failed to deliver.
func (m *Metrics) EventForwardFailed(forwarder, reason string) {
	if m != nil {
		m.forwardFailures.WithLabelValues(forwarder, reason).Inc()
	}
}
