package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "armar"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	fallbackServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_served_total",
			Help:      "Listings answered from static data, by collection and reason.",
		},
		[]string{"collection", "reason"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Appointment and quote submissions by collection and acknowledgment status.",
		},
		[]string{"collection", "status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, fallbackServed, submissions)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(endpoint string, status int, dur time.Duration) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(endpoint).Observe(dur.Seconds())
}

// IncFallback counts a listing answered from static data.
func IncFallback(collection, reason string) {
	fallbackServed.WithLabelValues(collection, reason).Inc()
}

// IncSubmission counts a submission by its acknowledgment status.
func IncSubmission(collection, status string) {
	submissions.WithLabelValues(collection, status).Inc()
}
