package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client side collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    prometheus.Histogram
	RateLimitRemaining prometheus.Gauge
	RateLimitWait      prometheus.Histogram
	FeedItems          *prometheus.CounterVec
	FeedErrors         *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reddit_client_requests_total",
				Help: "Total API requests by response status",
			},
			[]string{"code"},
		),
		RequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reddit_client_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		RateLimitRemaining: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "reddit_client_ratelimit_remaining",
				Help: "Requests left in the current quota window as last reported by the server",
			},
		),
		RateLimitWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reddit_client_ratelimit_wait_seconds",
				Help:    "Time spent held back by the rate limiter before a request",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
		),
		FeedItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reddit_client_feed_items_total",
				Help: "Items emitted by polling feeds",
			},
			[]string{"endpoint"},
		),
		FeedErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reddit_client_feed_errors_total",
				Help: "Failed feed polls",
			},
			[]string{"endpoint"},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RateLimitRemaining,
		m.RateLimitWait,
		m.FeedItems,
		m.FeedErrors,
	)
	return m
}

// ObserveRequest records one completed round trip. code 0 means the request
// never got a response.
func (m *Metrics) ObserveRequest(code int, dur time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.RequestsTotal.WithLabelValues(label).Inc()
	m.RequestDuration.Observe(dur.Seconds())
}

func (m *Metrics) SetRemaining(n int) {
	if m == nil {
		return
	}
	m.RateLimitRemaining.Set(float64(n))
}

func (m *Metrics) ObserveWait(d time.Duration) {
	if m == nil {
		return
	}
	m.RateLimitWait.Observe(d.Seconds())
}

func (m *Metrics) AddFeedItems(endpoint string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FeedItems.WithLabelValues(endpoint).Add(float64(n))
}

func (m *Metrics) FeedError(endpoint string) {
	if m == nil {
		return
	}
	m.FeedErrors.WithLabelValues(endpoint).Inc()
}
