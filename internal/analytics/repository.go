package analytics

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository holds the reporting queries. Every method is a single
// read-only statement over the gateway's base tables; the only write path
// in this service lives in the retention package.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ServerHealthSummary buckets all non-inactive servers by health status.
// Servers reporting 'unknown' count as degraded so the buckets always sum
// to the total.
func (r *Repository) ServerHealthSummary() (*ServerHealthSummary, error) {
	var summary ServerHealthSummary
	query := `
        SELECT
            COUNT(*) AS total_servers,
            COUNT(*) FILTER (WHERE health_status = 'healthy') AS healthy_servers,
            COUNT(*) FILTER (WHERE health_status = 'unhealthy') AS unhealthy_servers,
            COUNT(*) FILTER (WHERE health_status IN ('degraded', 'unknown')) AS degraded_servers,
            COALESCE(AVG(avg_response_time), 0) AS avg_response_time
        FROM servers
        WHERE status != 'inactive'`

	err := r.db.Get(&summary, query)
	return &summary, err
}

// ServerPerformanceRanking returns the top servers by composite score.
// Ties break on server id so the ordering is deterministic.
func (r *Repository) ServerPerformanceRanking(limit int) ([]ServerPerformance, error) {
	if limit <= 0 {
		limit = 10
	}

	ranking := []ServerPerformance{}
	query := fmt.Sprintf(`
        SELECT
            id AS server_id,
            name,
            health_status,
            avg_response_time,
            uptime,
            request_count AS total_requests,
            %s AS performance_score
        FROM servers
        WHERE status != 'inactive'
        ORDER BY performance_score DESC, server_id ASC
        LIMIT $1`, performanceScoreExpr())

	err := r.db.Select(&ranking, query, limit)
	return ranking, err
}

// RequestPerformanceSummary aggregates the request log over the last N
// hours. Rows missing response_time or status_code are excluded before the
// percentiles are taken.
func (r *Repository) RequestPerformanceSummary(hours int) (*RequestPerformanceSummary, error) {
	if hours <= 0 {
		hours = 24
	}

	var summary RequestPerformanceSummary
	query := `
        WITH recent AS (
            SELECT response_time, status_code
            FROM api_usage
            WHERE requested_at > utc_now() - ($1 || ' hours')::interval
            AND response_time IS NOT NULL
            AND status_code IS NOT NULL
        )
        SELECT
            COUNT(*) AS total_requests,
            COUNT(*) FILTER (WHERE status_code < 400) AS success_count,
            COUNT(*) FILTER (WHERE status_code >= 400) AS error_count,
            COALESCE(AVG(response_time), 0) AS avg_duration,
            COALESCE(PERCENTILE_CONT(0.95) WITHIN GROUP (ORDER BY response_time), 0) AS p95_duration,
            COALESCE(PERCENTILE_CONT(0.99) WITHIN GROUP (ORDER BY response_time), 0) AS p99_duration
        FROM recent`

	err := r.db.Get(&summary, query, hours)
	return &summary, err
}

// TenantUsageSummary aggregates one tenant's footprint. Every column is
// coalesced so a tenant with no data gets zero counts, not NULLs.
func (r *Repository) TenantUsageSummary(tenantID string) (*TenantUsageSummary, error) {
	var summary TenantUsageSummary
	query := `
        SELECT
            (SELECT COUNT(*) FROM servers WHERE tenant_id = $1) AS servers,
            (SELECT COUNT(*) FROM tools t JOIN servers s ON t.server_id = s.id WHERE s.tenant_id = $1) AS tools,
            (SELECT COUNT(*) FROM resources r JOIN servers s ON r.server_id = s.id WHERE s.tenant_id = $1) AS resources,
            (SELECT COUNT(*) FROM api_usage WHERE tenant_id = $1) AS api_calls,
            COALESCE((SELECT AVG(response_time) FROM api_usage WHERE tenant_id = $1 AND response_time IS NOT NULL), 0) AS avg_response_time,
            (SELECT COUNT(*) FROM users WHERE tenant_id = $1) AS users,
            (SELECT COUNT(*) FROM sessions
             WHERE tenant_id = $1 AND NOT is_revoked AND expires_at > utc_now()) AS active_sessions`

	err := r.db.Get(&summary, query, tenantID)
	return &summary, err
}

// APIUsageTrending buckets the request log by the given granularity over
// the last N days. Invalid granularities fail before the database is hit.
func (r *Repository) APIUsageTrending(days int, granularity Granularity) ([]UsageTrendPoint, error) {
	if _, err := ParseGranularity(string(granularity)); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}

	points := []UsageTrendPoint{}
	query := `
        SELECT
            date_trunc($2, requested_at) AS time_bucket,
            COUNT(*) AS total_requests,
            COUNT(DISTINCT user_id) AS unique_users,
            COALESCE(AVG(response_time), 0) AS avg_response_time,
            ROUND(COUNT(*) FILTER (WHERE status_code >= 400) * 100.0 / COUNT(*), 2) AS error_rate
        FROM api_usage
        WHERE requested_at > utc_now() - ($1 || ' days')::interval
        GROUP BY time_bucket
        ORDER BY time_bucket`

	err := r.db.Select(&points, query, days, string(granularity))
	return points, err
}

// ToolUsageAnalytics reports per-tool call statistics, optionally scoped
// to one server. Tools that were never called are excluded, which also
// guards the success-rate division.
func (r *Repository) ToolUsageAnalytics(serverID *string) ([]ToolUsage, error) {
	tools := []ToolUsage{}
	query := `
        SELECT
            t.id AS tool_id,
            t.name,
            s.name AS server_name,
            t.total_calls,
            ROUND(t.success_count * 100.0 / t.total_calls, 2) AS success_rate,
            COALESCE(t.avg_execution_time, 0) AS avg_execution_time,
            t.last_used_at AS last_used
        FROM tools t
        JOIN servers s ON t.server_id = s.id
        WHERE t.total_calls > 0
        AND ($1::text IS NULL OR t.server_id = $1)
        ORDER BY t.total_calls DESC, t.id ASC`

	err := r.db.Select(&tools, query, serverID)
	return tools, err
}

// CircuitBreakerStatus snapshots every breaker with the time spent in its
// current state. The state machine itself is owned by the gateway's
// resilience layer.
func (r *Repository) CircuitBreakerStatus() ([]BreakerStatus, error) {
	breakers := []BreakerStatus{}
	query := `
        SELECT
            cb.server_id,
            s.tenant_id,
            s.name AS server_name,
            cb.service_name,
            cb.state,
            cb.failure_count,
            cb.success_count,
            EXTRACT(EPOCH FROM (utc_now() - cb.last_state_change)) AS time_in_current_state
        FROM circuit_breakers cb
        JOIN servers s ON cb.server_id = s.id
        ORDER BY cb.state, cb.server_id`

	err := r.db.Select(&breakers, query)
	return breakers, err
}

// ConnectionPoolStats snapshots every pool. Utilization reports 0 rather
// than erroring when max_size is 0.
func (r *Repository) ConnectionPoolStats() ([]PoolStats, error) {
	pools := []PoolStats{}
	query := `
        SELECT
            cp.server_id,
            s.tenant_id,
            s.name AS server_name,
            cp.pool_name,
            cp.active_connections,
            cp.idle_connections,
            cp.max_size,
            CASE WHEN cp.max_size = 0 THEN 0
                 ELSE ROUND(cp.active_connections * 100.0 / cp.max_size, 2)
            END AS utilization_percentage,
            cp.avg_connection_time_ms,
            cp.is_healthy
        FROM connection_pools cp
        JOIN servers s ON cp.server_id = s.id
        ORDER BY cp.server_id, cp.pool_name`

	err := r.db.Select(&pools, query)
	return pools, err
}
