// Package metrics exposes swap lifecycle and HTTP counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"nft-swapper.backend/internal/domain/entities"
)

const namespace = "nft_swapper"

// SwapMetrics implements usecases.SwapObserver on a private registry.
type SwapMetrics struct {
	registry *prometheus.Registry

	transitions  *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	openOffers   prometheus.Gauge
	expiredOpen  prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewSwapMetrics registers every collector, plus the Go and process collectors.
func NewSwapMetrics() *SwapMetrics {
	m := &SwapMetrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "transitions_total",
			Help:      "SwapStateChanged events emitted, by new state.",
		}, []string{"state"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "rejections_total",
			Help:      "Refused swap operations, by operation and error code.",
		}, []string{"operation", "code"}),
		openOffers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "open",
			Help:      "Offers currently in the Created state.",
		}),
		expiredOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "expired_open",
			Help:      "Created offers whose registry has expired.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.transitions,
		m.rejections,
		m.openOffers,
		m.expiredOpen,
		m.httpRequests,
		m.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry, mainly for tests.
func (m *SwapMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *SwapMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *SwapMetrics) OfferTransitioned(state entities.SwapState) {
	m.transitions.WithLabelValues(state.String()).Inc()
}

func (m *SwapMetrics) OperationRejected(operation, code string) {
	m.rejections.WithLabelValues(operation, code).Inc()
}

// SetOfferGauges records the latest open / expired-open counts.
func (m *SwapMetrics) SetOfferGauges(open, expiredOpen int64) {
	m.openOffers.Set(float64(open))
	m.expiredOpen.Set(float64(expiredOpen))
}

// ObserveRequest records one HTTP request against its route template.
func (m *SwapMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
