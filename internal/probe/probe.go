package probe

import (
	"net/url"
	"strings"

	"github.com/mcpgateway/registry-insights/internal/db"
)

// Probe types. The endpoint probe drives the server's health columns;
// dns and domain probes only enrich server_metrics with diagnostics.
const (
	TypeEndpoint = "endpoint"
	TypeDNS      = "dns"
	TypeDomain   = "domain"
)

type Runner interface {
	Probe(server *db.Server) *db.ServerMetric
}

func newMetric(server *db.Server, probeType string) *db.ServerMetric {
	return &db.ServerMetric{
		ServerID:     server.ID,
		TenantID:     server.TenantID,
		ProbeType:    probeType,
		HealthStatus: db.HealthStatusUnknown,
		Details:      make(db.JSONB),
	}
}

// endpointHost extracts the hostname from a server's endpoint URL.
func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		host := strings.TrimPrefix(endpoint, "http://")
		host = strings.TrimPrefix(host, "https://")
		return strings.Split(host, "/")[0]
	}
	return u.Hostname()
}
