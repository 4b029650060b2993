package db

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

type ServerStatus string

const (
	ServerStatusActive   ServerStatus = "active"
	ServerStatusInactive ServerStatus = "inactive"
)

// HealthStatus is independent of ServerStatus: a server can be active
// and unhealthy at the same time.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusUnknown   HealthStatus = "unknown"
)

type TransportType string

const (
	TransportHTTP      TransportType = "http"
	TransportSSE       TransportType = "sse"
	TransportWebSocket TransportType = "websocket"
	TransportStdio     TransportType = "stdio"
)

type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// Server is a registered MCP server. Health columns are written by the
// probe worker; everything else is owned by the registry CRUD layer.
type Server struct {
	ID              string        `json:"id" db:"id"`
	TenantID        string        `json:"-" db:"tenant_id"`
	Name            string        `json:"name" db:"name"`
	EndpointURL     string        `json:"endpoint_url" db:"endpoint_url"`
	TransportType   TransportType `json:"transport_type" db:"transport_type"`
	Status          ServerStatus  `json:"status" db:"status"`
	HealthStatus    HealthStatus  `json:"health_status" db:"health_status"`
	AvgResponseTime float64       `json:"avg_response_time" db:"avg_response_time"`
	Uptime          float64       `json:"uptime" db:"uptime"`
	SuccessRate     float64       `json:"success_rate" db:"success_rate"`
	RequestCount    int64         `json:"request_count" db:"request_count"`
	LastHealthCheck *time.Time    `json:"last_health_check" db:"last_health_check"`
	Capabilities    JSONB         `json:"capabilities" db:"capabilities"`
	Tags            JSONB         `json:"tags" db:"tags"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

type Tool struct {
	ID               string     `json:"id" db:"id"`
	ServerID         string     `json:"server_id" db:"server_id"`
	Name             string     `json:"name" db:"name"`
	Description      string     `json:"description" db:"description"`
	InputSchema      JSONB      `json:"input_schema" db:"input_schema"`
	TotalCalls       int64      `json:"total_calls" db:"total_calls"`
	SuccessCount     int64      `json:"success_count" db:"success_count"`
	ErrorCount       int64      `json:"error_count" db:"error_count"`
	AvgExecutionTime float64    `json:"avg_execution_time" db:"avg_execution_time"`
	LastUsedAt       *time.Time `json:"last_used_at" db:"last_used_at"`
}

type Resource struct {
	ID         string     `json:"id" db:"id"`
	ServerID   string     `json:"server_id" db:"server_id"`
	Name       string     `json:"name" db:"name"`
	URI        string     `json:"uri" db:"uri"`
	MimeType   string     `json:"mime_type" db:"mime_type"`
	CallCount  int64      `json:"call_count" db:"call_count"`
	LastUsedAt *time.Time `json:"last_used_at" db:"last_used_at"`
}

// Session is active iff it is not revoked and expires_at is in the future.
type Session struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"user_id" db:"user_id"`
	TenantID       string     `json:"-" db:"tenant_id"`
	ExpiresAt      time.Time  `json:"expires_at" db:"expires_at"`
	IsRevoked      bool       `json:"is_revoked" db:"is_revoked"`
	LastActivityAt *time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// APIUsage is the append-only request log, one row per inbound request.
type APIUsage struct {
	ID           string    `json:"id" db:"id"`
	TenantID     string    `json:"-" db:"tenant_id"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"`
	TokenID      *string   `json:"token_id,omitempty" db:"token_id"`
	IPAddress    *string   `json:"ip_address,omitempty" db:"ip_address"`
	Method       string    `json:"method" db:"method"`
	Path         string    `json:"path" db:"path"`
	StatusCode   *int      `json:"status_code" db:"status_code"`
	ResponseTime *float64  `json:"response_time" db:"response_time"`
	RequestedAt  time.Time `json:"requested_at" db:"requested_at"`
}

type Tenant struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CircuitBreaker state is owned by the gateway's resilience layer;
// this service only reads it.
type CircuitBreaker struct {
	ID              string       `json:"id" db:"id"`
	ServerID        string       `json:"server_id" db:"server_id"`
	ServiceName     string       `json:"service_name" db:"service_name"`
	State           BreakerState `json:"state" db:"state"`
	FailureCount    int          `json:"failure_count" db:"failure_count"`
	SuccessCount    int          `json:"success_count" db:"success_count"`
	LastStateChange time.Time    `json:"last_state_change" db:"last_state_change"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

type ConnectionPool struct {
	ID                  string    `json:"id" db:"id"`
	ServerID            string    `json:"server_id" db:"server_id"`
	PoolName            string    `json:"pool_name" db:"pool_name"`
	ActiveConnections   int       `json:"active_connections" db:"active_connections"`
	IdleConnections     int       `json:"idle_connections" db:"idle_connections"`
	MaxSize             int       `json:"max_size" db:"max_size"`
	AvgConnectionTimeMs float64   `json:"avg_connection_time_ms" db:"avg_connection_time_ms"`
	IsHealthy           bool      `json:"is_healthy" db:"is_healthy"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

type AuditLog struct {
	ID           string    `json:"id" db:"id"`
	TenantID     string    `json:"-" db:"tenant_id"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"`
	Action       string    `json:"action" db:"action"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceID   *string   `json:"resource_id,omitempty" db:"resource_id"`
	Success      bool      `json:"success" db:"success"`
	Details      JSONB     `json:"details,omitempty" db:"details"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ServerMetric is one probe observation, written by the probe worker and
// aged out by the janitor.
type ServerMetric struct {
	ID             string       `json:"id" db:"id"`
	ServerID       string       `json:"server_id" db:"server_id"`
	TenantID       string       `json:"-" db:"tenant_id"`
	ProbeType      string       `json:"probe_type" db:"probe_type"`
	HealthStatus   HealthStatus `json:"health_status" db:"health_status"`
	ResponseTimeMs int          `json:"response_time_ms" db:"response_time_ms"`
	StatusCode     int          `json:"status_code,omitempty" db:"status_code"`
	Error          string       `json:"error,omitempty" db:"error"`
	Details        JSONB        `json:"details,omitempty" db:"details"`
	CheckedAt      time.Time    `json:"checked_at" db:"checked_at"`
}

// JSONB maps to a jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	return json.Unmarshal(value.([]byte), j)
}

// UTCNow mirrors the utc_now() SQL helper so time comparisons done in Go
// use the same timezone baseline as the ones done in SQL.
func UTCNow() time.Time {
	return time.Now().UTC()
}
