package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveHTTP("/api/services", http.StatusOK, 15*time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(fallbackServed.WithLabelValues("service", "empty"))
	IncFallback("service", "empty")
	assert.Equal(t, before+1, testutil.ToFloat64(fallbackServed.WithLabelValues("service", "empty")))

	before = testutil.ToFloat64(submissions.WithLabelValues("appointment", "received"))
	IncSubmission("appointment", "received")
	assert.Equal(t, before+1, testutil.ToFloat64(submissions.WithLabelValues("appointment", "received")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("/test", "200"))
	ObserveHTTP("/test", http.StatusOK, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/test", "200")))
}
