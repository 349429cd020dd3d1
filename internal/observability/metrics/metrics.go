package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics exposes request-level instruments.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// EngineMetrics exposes offer-engine instruments.
type EngineMetrics struct {
	calculations *prometheus.CounterVec
	redemptions  *prometheus.CounterVec
	calcDuration prometheus.Histogram
}

// NewHTTPMetrics registers HTTP instruments on the default registry.
func NewHTTPMetrics() *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "optora_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "optora_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	prometheus.MustRegister(m.requests, m.duration)
	return m
}

// NewEngineMetrics registers offer-engine instruments on the default registry.
func NewEngineMetrics() *EngineMetrics {
	m := &EngineMetrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "optora_offer_calculations_total",
			Help: "Offer calculations by primary rule type.",
		}, []string{"primary_rule"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "optora_coupon_redemptions_total",
			Help: "Coupon redemption attempts by outcome.",
		}, []string{"outcome"}),
		calcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "optora_offer_calculation_duration_seconds",
			Help:    "Offer calculation latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	prometheus.MustRegister(m.calculations, m.redemptions, m.calcDuration)
	return m
}

// RecordCalculation increments calculation counts.
func (m *EngineMetrics) RecordCalculation(primaryRule string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if primaryRule == "" {
		primaryRule = "none"
	}
	m.calculations.WithLabelValues(primaryRule).Inc()
	m.calcDuration.Observe(elapsed.Seconds())
}

// RecordRedemption increments redemption counts.
func (m *EngineMetrics) RecordRedemption(outcome string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(outcome).Inc()
}

// GinMiddleware instruments inbound HTTP requests.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
