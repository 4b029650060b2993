package probe

import (
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"

	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
)

// DomainProber watches the registration expiry of the endpoint's domain.
// An expired domain takes every server behind it down at once, so expiry
// inside the warning window reports degraded before it becomes an outage.
type DomainProber struct {
	warningDays int
}

func NewDomainProber(cfg config.ProbeConfig) *DomainProber {
	return &DomainProber{warningDays: cfg.DomainExpiryWarningDays}
}

func (p *DomainProber) Probe(server *db.Server) *db.ServerMetric {
	metric := newMetric(server, TypeDomain)

	domain := endpointHost(server.EndpointURL)
	if domain == "" {
		metric.HealthStatus = db.HealthStatusUnknown
		metric.Error = "endpoint has no hostname"
		return metric
	}

	start := time.Now()
	raw, err := whois.Whois(domain)
	metric.ResponseTimeMs = int(time.Since(start).Milliseconds())

	if err != nil {
		metric.HealthStatus = db.HealthStatusUnhealthy
		metric.Error = fmt.Sprintf("WHOIS lookup failed: %v", err)
		return metric
	}

	expiry := extractExpiryDate(raw)
	if expiry.IsZero() {
		metric.HealthStatus = db.HealthStatusUnknown
		metric.Error = "could not extract expiry date from WHOIS data"
		return metric
	}

	metric.Details["domain"] = domain
	metric.Details["expiry_date"] = expiry.Format(time.RFC3339)

	now := db.UTCNow()
	if now.After(expiry) {
		metric.HealthStatus = db.HealthStatusUnhealthy
		metric.Error = "domain has expired"
		return metric
	}

	daysLeft := int(expiry.Sub(now).Hours() / 24)
	metric.Details["days_until_expiry"] = daysLeft

	if p.warningDays > 0 && daysLeft < p.warningDays {
		metric.HealthStatus = db.HealthStatusDegraded
		metric.Error = fmt.Sprintf("domain expires in %d days", daysLeft)
		return metric
	}

	metric.HealthStatus = db.HealthStatusHealthy
	return metric
}

var expiryPatterns = []string{
	"registry expiry date:",
	"registrar registration expiration date:",
	"expiry date:",
	"expiration date:",
	"expires:",
	"expiry:",
	"paid-till:",
}

var expiryFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

func extractExpiryDate(whoisData string) time.Time {
	for _, line := range strings.Split(whoisData, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		for _, pattern := range expiryPatterns {
			if !strings.HasPrefix(lower, pattern) {
				continue
			}

			dateStr := strings.TrimSpace(line[len(pattern):])
			for _, format := range expiryFormats {
				if t, err := time.Parse(format, dateStr); err == nil {
					return t
				}
			}
		}
	}

	return time.Time{}
}
