package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewWithRegistry(prometheus.NewRegistry())

	c.CountAnalysis("model")
	c.CountAnalysis("fallback")
	c.CountAnalysis("fallback")
	c.ObserveCompletion(time.Second, nil)
	c.ObserveCompletion(2*time.Second, errors.New("timeout"))
	c.ObserveRequest("/analyze-love-style", 200)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.analyses.WithLabelValues("model")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.analyses.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("/analyze-love-style", "200")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.completionDuration))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.CountAnalysis("model")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `gunghab_analyses_total{source="model"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
