package analytics

import (
	"time"

	"github.com/mcpgateway/registry-insights/internal/db"
)

// ServerHealthSummary partitions every non-inactive server into exactly one
// health bucket: healthy + unhealthy + degraded = total.
type ServerHealthSummary struct {
	TotalServers     int64   `json:"total_servers" db:"total_servers"`
	HealthyServers   int64   `json:"healthy_servers" db:"healthy_servers"`
	UnhealthyServers int64   `json:"unhealthy_servers" db:"unhealthy_servers"`
	DegradedServers  int64   `json:"degraded_servers" db:"degraded_servers"`
	AvgResponseTime  float64 `json:"avg_response_time" db:"avg_response_time"`
}

type ServerPerformance struct {
	ServerID         string          `json:"server_id" db:"server_id"`
	Name             string          `json:"name" db:"name"`
	HealthStatus     db.HealthStatus `json:"health_status" db:"health_status"`
	AvgResponseTime  float64         `json:"avg_response_time" db:"avg_response_time"`
	Uptime           float64         `json:"uptime" db:"uptime"`
	TotalRequests    int64           `json:"total_requests" db:"total_requests"`
	PerformanceScore float64         `json:"performance_score" db:"performance_score"`
}

type RequestPerformanceSummary struct {
	TotalRequests int64   `json:"total_requests" db:"total_requests"`
	SuccessCount  int64   `json:"success_count" db:"success_count"`
	ErrorCount    int64   `json:"error_count" db:"error_count"`
	AvgDuration   float64 `json:"avg_duration" db:"avg_duration"`
	P95Duration   float64 `json:"p95_duration" db:"p95_duration"`
	P99Duration   float64 `json:"p99_duration" db:"p99_duration"`
}

type TenantUsageSummary struct {
	Servers         int64   `json:"servers" db:"servers"`
	Tools           int64   `json:"tools" db:"tools"`
	Resources       int64   `json:"resources" db:"resources"`
	APICalls        int64   `json:"api_calls" db:"api_calls"`
	AvgResponseTime float64 `json:"avg_response_time" db:"avg_response_time"`
	Users           int64   `json:"users" db:"users"`
	ActiveSessions  int64   `json:"active_sessions" db:"active_sessions"`
}

type UsageTrendPoint struct {
	TimeBucket      time.Time `json:"time_bucket" db:"time_bucket"`
	TotalRequests   int64     `json:"total_requests" db:"total_requests"`
	UniqueUsers     int64     `json:"unique_users" db:"unique_users"`
	AvgResponseTime float64   `json:"avg_response_time" db:"avg_response_time"`
	ErrorRate       float64   `json:"error_rate" db:"error_rate"`
}

type ToolUsage struct {
	ToolID           string     `json:"tool_id" db:"tool_id"`
	Name             string     `json:"name" db:"name"`
	ServerName       string     `json:"server_name" db:"server_name"`
	TotalCalls       int64      `json:"total_calls" db:"total_calls"`
	SuccessRate      float64    `json:"success_rate" db:"success_rate"`
	AvgExecutionTime float64    `json:"avg_execution_time" db:"avg_execution_time"`
	LastUsed         *time.Time `json:"last_used" db:"last_used"`
}

type BreakerStatus struct {
	ServerID           string          `json:"server_id" db:"server_id"`
	TenantID           string          `json:"-" db:"tenant_id"`
	ServerName         string          `json:"server_name" db:"server_name"`
	ServiceName        string          `json:"service_name" db:"service_name"`
	State              db.BreakerState `json:"state" db:"state"`
	FailureCount       int             `json:"failure_count" db:"failure_count"`
	SuccessCount       int             `json:"success_count" db:"success_count"`
	TimeInCurrentState float64         `json:"time_in_current_state_seconds" db:"time_in_current_state"`
}

type PoolStats struct {
	ServerID              string  `json:"server_id" db:"server_id"`
	TenantID              string  `json:"-" db:"tenant_id"`
	ServerName            string  `json:"server_name" db:"server_name"`
	PoolName              string  `json:"pool_name" db:"pool_name"`
	ActiveConnections     int     `json:"active_connections" db:"active_connections"`
	IdleConnections       int     `json:"idle_connections" db:"idle_connections"`
	MaxSize               int     `json:"max_size" db:"max_size"`
	UtilizationPercentage float64 `json:"utilization_percentage" db:"utilization_percentage"`
	AvgConnectionTimeMs   float64 `json:"avg_connection_time_ms" db:"avg_connection_time_ms"`
	IsHealthy             bool    `json:"is_healthy" db:"is_healthy"`
}

type ComponentHealth struct {
	Component string          `json:"component"`
	Status    db.HealthStatus `json:"status"`
	Details   db.JSONB        `json:"details"`
}
