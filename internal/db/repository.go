package db

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping() error {
	return r.db.Ping()
}

func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// Server reads

func (r *Repository) GetServer(id, tenantID string) (*Server, error) {
	var s Server
	query := `SELECT * FROM servers WHERE id = $1 AND tenant_id = $2`
	err := r.db.Get(&s, query, id, tenantID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("server not found")
	}
	return &s, err
}

func (r *Repository) GetServerByID(id string) (*Server, error) {
	var s Server
	query := `SELECT * FROM servers WHERE id = $1`
	err := r.db.Get(&s, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("server not found")
	}
	return &s, err
}

func (r *Repository) ListServersByTenant(tenantID string, limit, offset int) ([]*Server, error) {
	servers := []*Server{}
	query := `
        SELECT * FROM servers
        WHERE tenant_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	err := r.db.Select(&servers, query, tenantID, limit, offset)
	return servers, err
}

// GetServersDueForProbe returns active servers whose last health check is
// missing or older than the probe interval. Stdio servers have no network
// endpoint to probe and are skipped.
func (r *Repository) GetServersDueForProbe(intervalSeconds int) ([]*Server, error) {
	servers := []*Server{}
	query := `
        SELECT * FROM servers
        WHERE status = 'active'
        AND transport_type != 'stdio'
        AND (
            last_health_check IS NULL
            OR last_health_check + ($1 || ' seconds')::interval < utc_now()
        )`

	err := r.db.Select(&servers, query, intervalSeconds)
	return servers, err
}

// Probe writes

// SaveProbeResult records one probe observation and, for endpoint probes,
// folds it into the server's health columns in the same transaction.
func (r *Repository) SaveProbeResult(metric *ServerMetric, updateHealth bool) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO server_metrics (
            id, server_id, tenant_id, probe_type, health_status,
            response_time_ms, status_code, error, details, checked_at
        ) VALUES (
            :id, :server_id, :tenant_id, :probe_type, :health_status,
            :response_time_ms, :status_code, :error, :details, :checked_at
        )`

	if _, err = tx.NamedExec(query, metric); err != nil {
		return err
	}

	if updateHealth {
		healthy := 0
		if metric.HealthStatus == HealthStatusHealthy {
			healthy = 1
		}

		// avg_response_time is a request-count weighted running mean;
		// uptime and success_rate are recomputed from the counters.
		healthQuery := `
            UPDATE servers SET
                health_status = $2,
                avg_response_time = CASE
                    WHEN request_count = 0 THEN $3
                    ELSE (avg_response_time * request_count + $3) / (request_count + 1)
                END,
                uptime = (uptime * request_count + $4 * 100.0) / (request_count + 1),
                success_rate = (success_rate * request_count + $4 * 100.0) / (request_count + 1),
                request_count = request_count + 1,
                last_health_check = utc_now(),
                updated_at = utc_now()
            WHERE id = $1`

		if _, err = tx.Exec(healthQuery,
			metric.ServerID,
			metric.HealthStatus,
			float64(metric.ResponseTimeMs),
			healthy,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetServerMetrics(serverID, tenantID string, limit int) ([]*ServerMetric, error) {
	metrics := []*ServerMetric{}
	query := `
        SELECT m.* FROM server_metrics m
        JOIN servers s ON m.server_id = s.id
        WHERE m.server_id = $1 AND s.tenant_id = $2
        ORDER BY m.checked_at DESC
        LIMIT $3`

	err := r.db.Select(&metrics, query, serverID, tenantID, limit)
	return metrics, err
}
