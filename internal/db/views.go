package db

import "fmt"

// Materialized views backing the dashboard endpoints. They trade staleness
// for cheap reads; the janitor refreshes them on an interval.
var materializedViews = []string{
	"server_health_overview",
	"tenant_usage_daily",
	"tool_usage_overview",
}

// RefreshMaterializedViews refreshes each dashboard view. CONCURRENTLY
// keeps readers unblocked; it requires the unique indexes created by the
// view migration.
func (r *Repository) RefreshMaterializedViews() error {
	for _, view := range materializedViews {
		if _, err := r.db.Exec(fmt.Sprintf("REFRESH MATERIALIZED VIEW CONCURRENTLY %s", view)); err != nil {
			return fmt.Errorf("failed to refresh %s: %w", view, err)
		}
	}
	return nil
}
