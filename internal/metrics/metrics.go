// Package metrics exposes the authentication and tenancy counters scraped at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tenant_auth"

// Collector records auth flow outcomes. All methods are no-ops on a nil Collector.
type Collector struct {
	logins              *prometheus.CounterVec
	refreshes           *prometheus.CounterVec
	logouts             prometheus.Counter
	pipelineRejections  *prometheus.CounterVec
	revocationLookups   *prometheus.CounterVec
	tenantFailClosed    *prometheus.CounterVec
	refreshTokensPurged prometheus.Counter
	securityEvents      *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Refresh token exchanges by outcome",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Completed logouts",
		}),
		pipelineRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_rejections_total",
			Help:      "Requests rejected by the authentication pipeline by reason",
		}, []string{"reason"}),
		revocationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocation_lookups_total",
			Help:      "Access token blacklist lookups by result",
		}, []string{"result"}),
		tenantFailClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_filter_fail_closed_total",
			Help:      "Statements on tenant-owned tables run without a bound tenant",
		}, []string{"table"}),
		refreshTokensPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_purged_total",
			Help:      "Expired refresh tokens deleted by the sweeper",
		}),
		securityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "security_events_total",
			Help:      "Security events by type and delivery result",
		}, []string{"type", "result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		c.logins,
		c.refreshes,
		c.logouts,
		c.pipelineRejections,
		c.revocationLookups,
		c.tenantFailClosed,
		c.refreshTokensPurged,
		c.securityEvents,
		c.httpDuration,
	)

	return c
}

func (c *Collector) RecordLogin(outcome string) {
	if c == nil {
		return
	}
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRefresh(outcome string) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLogout() {
	if c == nil {
		return
	}
	c.logouts.Inc()
}

func (c *Collector) RecordPipelineRejection(reason string) {
	if c == nil {
		return
	}
	c.pipelineRejections.WithLabelValues(reason).Inc()
}

// RecordRevocationLookup result is one of hit, miss, error
func (c *Collector) RecordRevocationLookup(result string) {
	if c == nil {
		return
	}
	c.revocationLookups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordTenantFailClosed(table string) {
	if c == nil {
		return
	}
	c.tenantFailClosed.WithLabelValues(table).Inc()
}

func (c *Collector) RecordRefreshTokensPurged(count int64) {
	if c == nil || count <= 0 {
		return
	}
	c.refreshTokensPurged.Add(float64(count))
}

func (c *Collector) RecordSecurityEvent(eventType, result string) {
	if c == nil {
		return
	}
	c.securityEvents.WithLabelValues(eventType, result).Inc()
}

func (c *Collector) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the gatherer in the Prometheus text format
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
