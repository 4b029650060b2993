package analytics

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpgateway/registry-insights/internal/db"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestServerHealthSummaryPartitionsServers(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT(.|\n)*FROM servers(.|\n)*WHERE status != 'inactive'`).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_servers", "healthy_servers", "unhealthy_servers", "degraded_servers", "avg_response_time",
		}).AddRow(10, 6, 1, 3, 142.7))

	summary, err := repo.ServerHealthSummary()
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.TotalServers)
	// healthy + unhealthy + degraded = total; 'unknown' servers count as degraded
	assert.Equal(t, summary.TotalServers,
		summary.HealthyServers+summary.UnhealthyServers+summary.DegradedServers)
	assert.Equal(t, 142.7, summary.AvgResponseTime)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerPerformanceRankingOrdersByScoreThenID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`ORDER BY performance_score DESC, server_id ASC`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{
			"server_id", "name", "health_status", "avg_response_time", "uptime", "total_requests", "performance_score",
		}).
			AddRow("srv-a", "alpha", "healthy", 120.0, 99.9, 5000, 94.96).
			AddRow("srv-b", "bravo", "degraded", 800.0, 95.0, 200, 57.5))

	ranking, err := repo.ServerPerformanceRanking(2)
	require.NoError(t, err)
	require.Len(t, ranking, 2)

	assert.Equal(t, "srv-a", ranking[0].ServerID)
	assert.GreaterOrEqual(t, ranking[0].PerformanceScore, ranking[1].PerformanceScore)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerPerformanceRankingDefaultsLimit(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM servers`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{
			"server_id", "name", "health_status", "avg_response_time", "uptime", "total_requests", "performance_score",
		}))

	_, err := repo.ServerPerformanceRanking(0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestPerformanceSummaryExcludesIncompleteRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`response_time IS NOT NULL(.|\n)*status_code IS NOT NULL`).
		WithArgs(24).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_requests", "success_count", "error_count", "avg_duration", "p95_duration", "p99_duration",
		}).AddRow(1000, 950, 50, 85.2, 240.0, 410.0))

	summary, err := repo.RequestPerformanceSummary(24)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), summary.TotalRequests)
	assert.Equal(t, summary.TotalRequests, summary.SuccessCount+summary.ErrorCount)
	assert.LessOrEqual(t, summary.P95Duration, summary.P99Duration)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantUsageSummaryCoalescesEmptyTenant(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("tenant-empty").
		WillReturnRows(sqlmock.NewRows([]string{
			"servers", "tools", "resources", "api_calls", "avg_response_time", "users", "active_sessions",
		}).AddRow(0, 0, 0, 0, 0.0, 0, 0))

	summary, err := repo.TenantUsageSummary("tenant-empty")
	require.NoError(t, err)

	assert.Zero(t, summary.Servers)
	assert.Zero(t, summary.APICalls)
	assert.Zero(t, summary.AvgResponseTime)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIUsageTrendingRejectsInvalidGranularityBeforeQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	_, err := repo.APIUsageTrending(7, "fortnight")
	require.Error(t, err)

	var invalid *InvalidGranularityError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "fortnight", invalid.Value)

	// No query must reach the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIUsageTrendingBucketsByGranularity(t *testing.T) {
	repo, mock := newMockRepo(t)

	bucket := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`date_trunc\(\$2, requested_at\)`).
		WithArgs(7, "day").
		WillReturnRows(sqlmock.NewRows([]string{
			"time_bucket", "total_requests", "unique_users", "avg_response_time", "error_rate",
		}).
			AddRow(bucket, 500, 12, 91.4, 2.4).
			AddRow(bucket.Add(24*time.Hour), 620, 15, 88.0, 1.9))

	points, err := repo.APIUsageTrending(7, GranularityDay)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.True(t, points[0].TimeBucket.Before(points[1].TimeBucket))
	assert.Equal(t, int64(500), points[0].TotalRequests)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolUsageAnalyticsFiltersByServer(t *testing.T) {
	repo, mock := newMockRepo(t)

	serverID := "srv-a"
	lastUsed := time.Now().UTC()

	mock.ExpectQuery(`WHERE t.total_calls > 0`).
		WithArgs(&serverID).
		WillReturnRows(sqlmock.NewRows([]string{
			"tool_id", "name", "server_name", "total_calls", "success_rate", "avg_execution_time", "last_used",
		}).AddRow("tool-1", "search", "alpha", 420, 97.62, 33.5, lastUsed))

	tools, err := repo.ToolUsageAnalytics(&serverID)
	require.NoError(t, err)
	require.Len(t, tools, 1)

	assert.Equal(t, "tool-1", tools[0].ToolID)
	assert.Equal(t, int64(420), tools[0].TotalCalls)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolUsageAnalyticsAllServers(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE t.total_calls > 0`).
		WithArgs((*string)(nil)).
		WillReturnRows(sqlmock.NewRows([]string{
			"tool_id", "name", "server_name", "total_calls", "success_rate", "avg_execution_time", "last_used",
		}))

	tools, err := repo.ToolUsageAnalytics(nil)
	require.NoError(t, err)
	assert.Empty(t, tools)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCircuitBreakerStatusReportsTimeInState(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM circuit_breakers cb`).
		WillReturnRows(sqlmock.NewRows([]string{
			"server_id", "tenant_id", "server_name", "service_name", "state",
			"failure_count", "success_count", "time_in_current_state",
		}).
			AddRow("srv-a", "tenant-1", "alpha", "upstream", "open", 12, 0, 93.5).
			AddRow("srv-b", "tenant-2", "bravo", "upstream", "closed", 0, 300, 86400.0))

	breakers, err := repo.CircuitBreakerStatus()
	require.NoError(t, err)
	require.Len(t, breakers, 2)

	assert.Equal(t, db.BreakerOpen, breakers[0].State)
	assert.Equal(t, 93.5, breakers[0].TimeInCurrentState)
	assert.Equal(t, "tenant-1", breakers[0].TenantID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionPoolStatsGuardsZeroMaxSize(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM connection_pools cp`).
		WillReturnRows(sqlmock.NewRows([]string{
			"server_id", "tenant_id", "server_name", "pool_name", "active_connections", "idle_connections",
			"max_size", "utilization_percentage", "avg_connection_time_ms", "is_healthy",
		}).
			AddRow("srv-a", "tenant-1", "alpha", "default", 8, 2, 10, 80.0, 4.2, true).
			AddRow("srv-b", "tenant-1", "bravo", "default", 0, 0, 0, 0.0, 0.0, false))

	pools, err := repo.ConnectionPoolStats()
	require.NoError(t, err)
	require.Len(t, pools, 2)

	assert.Equal(t, 80.0, pools[0].UtilizationPercentage)
	assert.Zero(t, pools[1].UtilizationPercentage)
	assert.False(t, pools[1].IsHealthy)

	assert.NoError(t, mock.ExpectationsWereMet())
}
