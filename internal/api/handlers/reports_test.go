package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/analytics"
)

func newReportHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	reports := analytics.NewRepository(sqlx.NewDb(mockDB, "sqlmock"))
	return NewHandler(reports, nil, nil, nil, nil, nil, nil, zap.NewNop()), mock
}

func reportRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/reports/usage-trending", h.GetAPIUsageTrending)
	r.GET("/reports/system-health", h.GetSystemHealth)
	return r
}

func TestGetAPIUsageTrendingInvalidGranularityIs400(t *testing.T) {
	h, mock := newReportHandler(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/usage-trending?granularity=month", nil)

	reportRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid granularity")

	// The request must fail before any query is issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAPIUsageTrendingDefaults(t *testing.T) {
	h, mock := newReportHandler(t)

	mock.ExpectQuery(`date_trunc`).
		WithArgs(7, "day").
		WillReturnRows(sqlmock.NewRows([]string{
			"time_bucket", "total_requests", "unique_users", "avg_response_time", "error_rate",
		}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/usage-trending", nil)

	reportRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSystemHealthReturns503WhenUnhealthy(t *testing.T) {
	h, mock := newReportHandler(t)

	// Database probe fails; the remaining probes still run
	mock.ExpectQuery(`SELECT 1`).WillReturnError(assert.AnError)
	mock.ExpectQuery(`FROM servers`).WillReturnError(assert.AnError)
	mock.ExpectQuery(`FROM recent`).WithArgs(1).WillReturnError(assert.AnError)
	mock.ExpectQuery(`FROM sessions`).WillReturnError(assert.AnError)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/system-health", nil)

	reportRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
