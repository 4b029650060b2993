package analytics

import (
	"time"

	"github.com/mcpgateway/registry-insights/internal/db"
)

// API performance thresholds in milliseconds, evaluated strictest-first so
// both branches are reachable.
const (
	apiUnhealthyThresholdMs = 2000.0
	apiDegradedThresholdMs  = 1000.0
)

func classifyAPIPerformance(avgResponseTimeMs float64) db.HealthStatus {
	switch {
	case avgResponseTimeMs >= apiUnhealthyThresholdMs:
		return db.HealthStatusUnhealthy
	case avgResponseTimeMs >= apiDegradedThresholdMs:
		return db.HealthStatusDegraded
	}
	return db.HealthStatusHealthy
}

func classifyServerFleet(summary *ServerHealthSummary) db.HealthStatus {
	switch {
	case summary.TotalServers == 0:
		return db.HealthStatusUnknown
	case summary.HealthyServers == 0:
		return db.HealthStatusUnhealthy
	case summary.UnhealthyServers > 0 || summary.DegradedServers > 0:
		return db.HealthStatusDegraded
	}
	return db.HealthStatusHealthy
}

// SystemHealth combines four heterogeneous probes into one report:
// database reachability, the MCP server fleet, recent API latency, and the
// active session count. A failing probe reports itself unhealthy instead of
// failing the whole call.
func (r *Repository) SystemHealth() []ComponentHealth {
	report := make([]ComponentHealth, 0, 4)

	report = append(report, r.databaseHealth())
	report = append(report, r.serverFleetHealth())
	report = append(report, r.apiPerformanceHealth())
	report = append(report, r.sessionHealth())

	return report
}

func (r *Repository) databaseHealth() ComponentHealth {
	start := time.Now()
	var one int
	if err := r.db.Get(&one, "SELECT 1"); err != nil {
		return ComponentHealth{
			Component: "database",
			Status:    db.HealthStatusUnhealthy,
			Details:   db.JSONB{"error": err.Error()},
		}
	}

	return ComponentHealth{
		Component: "database",
		Status:    db.HealthStatusHealthy,
		Details:   db.JSONB{"ping_ms": time.Since(start).Milliseconds()},
	}
}

func (r *Repository) serverFleetHealth() ComponentHealth {
	summary, err := r.ServerHealthSummary()
	if err != nil {
		return ComponentHealth{
			Component: "mcp_servers",
			Status:    db.HealthStatusUnhealthy,
			Details:   db.JSONB{"error": err.Error()},
		}
	}

	return ComponentHealth{
		Component: "mcp_servers",
		Status:    classifyServerFleet(summary),
		Details: db.JSONB{
			"total":     summary.TotalServers,
			"healthy":   summary.HealthyServers,
			"unhealthy": summary.UnhealthyServers,
			"degraded":  summary.DegradedServers,
		},
	}
}

func (r *Repository) apiPerformanceHealth() ComponentHealth {
	summary, err := r.RequestPerformanceSummary(1)
	if err != nil {
		return ComponentHealth{
			Component: "api_performance",
			Status:    db.HealthStatusUnhealthy,
			Details:   db.JSONB{"error": err.Error()},
		}
	}

	return ComponentHealth{
		Component: "api_performance",
		Status:    classifyAPIPerformance(summary.AvgDuration),
		Details: db.JSONB{
			"requests_last_hour": summary.TotalRequests,
			"avg_response_ms":    summary.AvgDuration,
			"p95_response_ms":    summary.P95Duration,
		},
	}
}

func (r *Repository) sessionHealth() ComponentHealth {
	var active int64
	query := `SELECT COUNT(*) FROM sessions WHERE NOT is_revoked AND expires_at > utc_now()`
	if err := r.db.Get(&active, query); err != nil {
		return ComponentHealth{
			Component: "sessions",
			Status:    db.HealthStatusUnhealthy,
			Details:   db.JSONB{"error": err.Error()},
		}
	}

	return ComponentHealth{
		Component: "sessions",
		Status:    db.HealthStatusHealthy,
		Details:   db.JSONB{"active_sessions": active},
	}
}
