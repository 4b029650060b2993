package probe

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
)

// EndpointProber checks MCP server endpoints over HTTP. SSE and
// streamable-HTTP transports both answer plain HTTP on their base URL, so
// one prober covers every network transport.
type EndpointProber struct {
	client              *http.Client
	degradedThresholdMs int
}

func NewEndpointProber(cfg config.ProbeConfig, timeout time.Duration) *EndpointProber {
	return &EndpointProber{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		degradedThresholdMs: cfg.DegradedThresholdMs,
	}
}

func (p *EndpointProber) Probe(server *db.Server) *db.ServerMetric {
	metric := newMetric(server, TypeEndpoint)

	req, err := http.NewRequest(http.MethodGet, server.EndpointURL, nil)
	if err != nil {
		metric.HealthStatus = db.HealthStatusUnhealthy
		metric.Error = fmt.Sprintf("failed to create request: %v", err)
		return metric
	}
	req.Header.Set("Accept", "application/json, text/event-stream")

	start := time.Now()
	resp, err := p.client.Do(req)
	metric.ResponseTimeMs = int(time.Since(start).Milliseconds())

	if err != nil {
		metric.HealthStatus = db.HealthStatusUnhealthy
		metric.Error = fmt.Sprintf("request failed: %v", err)
		return metric
	}
	defer resp.Body.Close()

	metric.StatusCode = resp.StatusCode
	metric.Details["status_code"] = resp.StatusCode

	switch {
	case resp.StatusCode >= 500:
		metric.HealthStatus = db.HealthStatusUnhealthy
		metric.Error = fmt.Sprintf("endpoint returned %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		// 4xx means reachable but misconfigured auth or path
		metric.HealthStatus = db.HealthStatusDegraded
		metric.Error = fmt.Sprintf("endpoint returned %d", resp.StatusCode)
	case metric.ResponseTimeMs >= p.degradedThresholdMs:
		metric.HealthStatus = db.HealthStatusDegraded
		metric.Error = fmt.Sprintf("slow response: %dms", metric.ResponseTimeMs)
	default:
		metric.HealthStatus = db.HealthStatusHealthy
	}

	return metric
}
