package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many instances
// as they like without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec

	loginsTotal        *prometheus.CounterVec
	refreshesTotal     *prometheus.CounterVec
	rateDecisionsTotal *prometheus.CounterVec
	lockoutsTotal      prometheus.Counter
	reuseDetectedTotal prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wastetrack_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wastetrack_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wastetrack_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		refreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wastetrack_token_refreshes_total",
			Help: "Refresh rotations by result.",
		}, []string{"result"}),
		rateDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wastetrack_rate_limit_decisions_total",
			Help: "Rate limiter decisions by endpoint class.",
		}, []string{"class", "decision"}),
		lockoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wastetrack_account_lockouts_total",
			Help: "Accounts that crossed the failed-login threshold.",
		}),
		reuseDetectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wastetrack_refresh_reuse_detected_total",
			Help: "Refresh tokens presented after they were already spent.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestSeconds,
		m.loginsTotal,
		m.refreshesTotal,
		m.rateDecisionsTotal,
		m.lockoutsTotal,
		m.reuseDetectedTotal,
	)

	return m
}

// Instrument records request count and latency per matched route. The
// route label uses the gin template, not the raw path, to keep
// cardinality bounded.
func (m *Metrics) Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *Metrics) ObserveLogin(result string) {
	m.loginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRefresh(result string) {
	m.refreshesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRateDecision(class, decision string) {
	m.rateDecisionsTotal.WithLabelValues(class, decision).Inc()
}

func (m *Metrics) IncLockout() {
	m.lockoutsTotal.Inc()
}

func (m *Metrics) IncReuseDetected() {
	m.reuseDetectedTotal.Inc()
}
