package retention

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/config"
)

// Cleaner ages out expired rows. Each DELETE is bounded by a time
// predicate, so a partially applied run converges on retry: re-running
// deletes nothing new until more rows age past their window.
type Cleaner struct {
	db     *sqlx.DB
	cfg    config.RetentionConfig
	logger *zap.Logger
}

type Result struct {
	Table       string `json:"table_name"`
	RowsDeleted int64  `json:"rows_deleted"`
}

func NewCleaner(db *sqlx.DB, cfg config.RetentionConfig, logger *zap.Logger) *Cleaner {
	return &Cleaner{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

type target struct {
	table     string
	statement string
	days      int
}

func (c *Cleaner) targets() []target {
	return []target{
		{
			table:     "sessions",
			statement: `DELETE FROM sessions WHERE expires_at < utc_now() - ($1 || ' days')::interval`,
			days:      c.cfg.SessionDays,
		},
		{
			table:     "api_tokens",
			statement: `DELETE FROM api_tokens WHERE expires_at < utc_now() - ($1 || ' days')::interval`,
			days:      c.cfg.TokenDays,
		},
		{
			table:     "audit_logs",
			statement: `DELETE FROM audit_logs WHERE created_at < utc_now() - ($1 || ' days')::interval`,
			days:      c.cfg.AuditLogDays,
		},
		{
			table:     "api_usage",
			statement: `DELETE FROM api_usage WHERE requested_at < utc_now() - ($1 || ' days')::interval`,
			days:      c.cfg.APIUsageDays,
		},
		{
			table:     "server_metrics",
			statement: `DELETE FROM server_metrics WHERE checked_at < utc_now() - ($1 || ' days')::interval`,
			days:      c.cfg.ServerMetricDays,
		},
	}
}

// Run executes the deletes sequentially and returns one result row per
// table. There is no wrapping transaction: a mid-sequence failure leaves
// earlier deletes applied, which is safe because Run is idempotent.
func (c *Cleaner) Run() ([]Result, error) {
	results := make([]Result, 0, 5)

	for _, t := range c.targets() {
		res, err := c.db.Exec(t.statement, t.days)
		if err != nil {
			return results, fmt.Errorf("failed to clean %s: %w", t.table, err)
		}

		deleted, err := res.RowsAffected()
		if err != nil {
			return results, fmt.Errorf("failed to count deleted rows for %s: %w", t.table, err)
		}

		if deleted > 0 {
			c.logger.Info("Cleaned expired rows",
				zap.String("table", t.table),
				zap.Int64("rows_deleted", deleted),
				zap.Int("retention_days", t.days),
			)
		}

		results = append(results, Result{Table: t.table, RowsDeleted: deleted})
	}

	return results, nil
}
