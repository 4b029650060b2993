package probe

import (
	"fmt"
	"time"

	"github.com/miekg/dns"

	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
)

// DNSProber verifies that a server's endpoint hostname still resolves.
// A registry full of healthy-looking servers whose DNS has rotted is a
// common failure mode after infrastructure moves.
type DNSProber struct {
	resolver string
	timeout  time.Duration
}

func NewDNSProber(cfg config.ProbeConfig, timeout time.Duration) *DNSProber {
	return &DNSProber{
		resolver: cfg.DNSResolver,
		timeout:  timeout,
	}
}

func (p *DNSProber) Probe(server *db.Server) *db.ServerMetric {
	metric := newMetric(server, TypeDNS)

	host := endpointHost(server.EndpointURL)
	if host == "" {
		metric.HealthStatus = db.HealthStatusUnknown
		metric.Error = "endpoint has no hostname"
		return metric
	}

	c := new(dns.Client)
	c.Timeout = p.timeout

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)

	start := time.Now()
	r, _, err := c.Exchange(m, p.resolver)
	metric.ResponseTimeMs = int(time.Since(start).Milliseconds())

	if err != nil {
		metric.HealthStatus = db.HealthStatusUnhealthy
		metric.Error = fmt.Sprintf("DNS query failed: %v", err)
		return metric
	}

	if r.Rcode != dns.RcodeSuccess {
		metric.HealthStatus = db.HealthStatusUnhealthy
		metric.Error = fmt.Sprintf("DNS query failed with code: %s", dns.RcodeToString[r.Rcode])
		return metric
	}

	var addrs []string
	for _, ans := range r.Answer {
		if a, ok := ans.(*dns.A); ok {
			addrs = append(addrs, a.A.String())
		}
	}

	metric.Details["host"] = host
	metric.Details["addresses"] = addrs
	metric.Details["record_count"] = len(addrs)

	if len(addrs) == 0 {
		metric.HealthStatus = db.HealthStatusDegraded
		metric.Error = "no A records found"
		return metric
	}

	metric.HealthStatus = db.HealthStatusHealthy
	return metric
}
