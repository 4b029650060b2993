package probe

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
)

func probeServer(url string) *db.Server {
	return &db.Server{
		ID:            "srv-1",
		TenantID:      "tenant-1",
		Name:          "test server",
		EndpointURL:   url,
		TransportType: db.TransportHTTP,
	}
}

func newTestProber(thresholdMs int) *EndpointProber {
	return NewEndpointProber(config.ProbeConfig{DegradedThresholdMs: thresholdMs}, 5*time.Second)
}

func TestEndpointProbeHealthy(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json, text/event-stream", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	metric := newTestProber(2000).Probe(probeServer(ts.URL))

	assert.Equal(t, db.HealthStatusHealthy, metric.HealthStatus)
	assert.Equal(t, http.StatusOK, metric.StatusCode)
	assert.Equal(t, "srv-1", metric.ServerID)
	assert.Equal(t, "tenant-1", metric.TenantID)
	assert.Equal(t, TypeEndpoint, metric.ProbeType)
	assert.Empty(t, metric.Error)
}

func TestEndpointProbeServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	metric := newTestProber(2000).Probe(probeServer(ts.URL))

	assert.Equal(t, db.HealthStatusUnhealthy, metric.HealthStatus)
	assert.Equal(t, http.StatusBadGateway, metric.StatusCode)
	assert.Contains(t, metric.Error, "502")
}

func TestEndpointProbeClientErrorIsDegraded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	metric := newTestProber(2000).Probe(probeServer(ts.URL))

	assert.Equal(t, db.HealthStatusDegraded, metric.HealthStatus)
	assert.Contains(t, metric.Error, "401")
}

func TestEndpointProbeSlowResponseIsDegraded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	// Threshold below the forced latency so the response counts as slow
	metric := newTestProber(10).Probe(probeServer(ts.URL))

	assert.Equal(t, db.HealthStatusDegraded, metric.HealthStatus)
	assert.Contains(t, metric.Error, "slow response")
}

func TestEndpointProbeConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	metric := newTestProber(2000).Probe(probeServer(url))

	assert.Equal(t, db.HealthStatusUnhealthy, metric.HealthStatus)
	assert.Contains(t, metric.Error, "request failed")
}

func TestEndpointHost(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://mcp.example.com/v1/sse", "mcp.example.com"},
		{"http://mcp.example.com:8443", "mcp.example.com"},
		{"mcp.example.com", "mcp.example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, endpointHost(tt.url), tt.url)
	}
}

func TestNewMetricInitializesDetails(t *testing.T) {
	metric := newMetric(probeServer("https://mcp.example.com"), TypeEndpoint)

	require.NotNil(t, metric.Details)
	assert.Equal(t, db.HealthStatusUnknown, metric.HealthStatus)
}
