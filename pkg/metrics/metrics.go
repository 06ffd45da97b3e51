package metrics

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	registryCalls   *prometheus.CounterVec
	registryBalance prometheus.Gauge
	studentCount    prometheus.Gauge
	httpDuration    *prometheus.HistogramVec
	busPublished    *prometheus.CounterVec
	auditMismatches prometheus.Gauge
}

// New creates and registers every collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registryCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_calls_total",
			Help: "Registry operations by result.",
		}, []string{"op", "result"}),
		registryBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "registry_balance_wei",
			Help: "Pooled balance held by the registry, in wei.",
		}),
		studentCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "registry_students",
			Help: "Registered students.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		busPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_events_published_total",
			Help: "Registry events handed to the message bus.",
		}, []string{"type", "result"}),
		auditMismatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onchain_audit_mismatches",
			Help: "Mismatches found by the last on-chain audit.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.registryCalls,
		m.registryBalance,
		m.studentCount,
		m.httpDuration,
		m.busPublished,
		m.auditMismatches,
	)
	return m
}

// Registry exposes the underlying prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the text exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCall counts one registry operation
func (m *Metrics) ObserveCall(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.registryCalls.WithLabelValues(op, result).Inc()
}

// SetBalance records the pooled balance. Values beyond float64 precision are approximate.
func (m *Metrics) SetBalance(balance *big.Int) {
	if m == nil || balance == nil {
		return
	}
	f, _ := new(big.Float).SetInt(balance).Float64()
	m.registryBalance.Set(f)
}

// SetStudentCount records the registered student count
func (m *Metrics) SetStudentCount(n int64) {
	if m == nil {
		return
	}
	m.studentCount.Set(float64(n))
}

// ObserveHTTP records one request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObservePublish counts one event handed to the bus
func (m *Metrics) ObservePublish(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.busPublished.WithLabelValues(eventType, result).Inc()
}

// SetAuditMismatches records the outcome of the last on-chain audit
func (m *Metrics) SetAuditMismatches(n int) {
	if m == nil {
		return
	}
	m.auditMismatches.Set(float64(n))
}
