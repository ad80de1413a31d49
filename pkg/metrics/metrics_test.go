package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.UpstreamRequests.WithLabelValues("gutenberg", "success").Inc()
	m.UpstreamRequests.WithLabelValues("gutenberg", "failure").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("gutenberg", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("gutenberg", "failure")))

	// independent registries do not collide
	other := New()
	assert.Equal(t, 0.0, testutil.ToFloat64(other.UpstreamRequests.WithLabelValues("gutenberg", "success")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/search/all", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `freebooks_http_requests_total{method="GET",path="/v1/search/all",status="200"} 1`)
}
