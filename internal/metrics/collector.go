package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/analytics"
	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
	"github.com/mcpgateway/registry-insights/internal/retention"
)

type Collector struct {
	config *config.RemoteWriteConfig
	logger *zap.Logger

	// Probe metrics
	probeDuration *prometheus.HistogramVec
	probeUp       *prometheus.GaugeVec
	probesTotal   *prometheus.CounterVec

	// Fleet metrics. The health summary covers every tenant's servers, so
	// these gauges carry no tenant label: the remote-write exporter only
	// ships tenant-labeled series, which keeps the fleet-wide counts
	// process-local instead of leaking them into one tenant's org.
	serversTotal     prometheus.Gauge
	serversHealthy   prometheus.Gauge
	serversUnhealthy prometheus.Gauge
	serversDegraded  prometheus.Gauge
	fleetAvgResponse prometheus.Gauge

	// Resilience metrics
	breakerState    *prometheus.GaugeVec
	poolUtilization *prometheus.GaugeVec

	// Housekeeping metrics
	cleanupDeletedTotal *prometheus.CounterVec
	probeQueueSize      *prometheus.GaugeVec
}

func NewCollector(cfg config.RemoteWriteConfig, logger *zap.Logger) *Collector {
	return &Collector{
		config: &cfg,
		logger: logger,

		probeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_probe_duration_seconds",
				Help:    "Duration of MCP server health probes in seconds",
				Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"tenant_id", "server_id", "server_name", "probe_type"},
		),

		probeUp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_probe_up",
				Help: "Whether the last probe found the server healthy (1) or not (0)",
			},
			[]string{"tenant_id", "server_id", "server_name", "probe_type"},
		),

		probesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_probes_total",
				Help: "Total number of probes performed",
			},
			[]string{"tenant_id", "server_id", "server_name", "probe_type", "status"},
		),

		serversTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_servers_total",
				Help: "Total number of non-inactive MCP servers",
			},
		),

		serversHealthy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_servers_healthy",
				Help: "Number of healthy MCP servers",
			},
		),

		serversUnhealthy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_servers_unhealthy",
				Help: "Number of unhealthy MCP servers",
			},
		),

		serversDegraded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_servers_degraded",
				Help: "Number of degraded or unknown MCP servers",
			},
		),

		fleetAvgResponse: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_servers_avg_response_time_ms",
				Help: "Fleet-wide average server response time in milliseconds",
			},
		),

		breakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 0.5=half_open, 1=open)",
			},
			[]string{"tenant_id", "server_id", "server_name", "service"},
		),

		poolUtilization: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_connection_pool_utilization_percentage",
				Help: "Connection pool utilization percentage",
			},
			[]string{"tenant_id", "server_id", "server_name", "pool"},
		),

		cleanupDeletedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_cleanup_rows_deleted_total",
				Help: "Total rows removed by retention cleanup, per table",
			},
			[]string{"table"},
		),

		probeQueueSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_probe_queue_size",
				Help: "Current size of the probe job queue",
			},
			[]string{"queue"},
		),
	}
}

func (c *Collector) RecordProbe(metric *db.ServerMetric, server *db.Server) {
	labels := []string{server.TenantID, server.ID, server.Name, metric.ProbeType}

	c.probeDuration.WithLabelValues(labels...).Observe(float64(metric.ResponseTimeMs) / 1000)
	c.probesTotal.WithLabelValues(server.TenantID, server.ID, server.Name, metric.ProbeType, string(metric.HealthStatus)).Inc()

	up := 0.0
	if metric.HealthStatus == db.HealthStatusHealthy {
		up = 1.0
	}
	c.probeUp.WithLabelValues(labels...).Set(up)
}

func (c *Collector) RecordHealthSummary(summary *analytics.ServerHealthSummary) {
	c.serversTotal.Set(float64(summary.TotalServers))
	c.serversHealthy.Set(float64(summary.HealthyServers))
	c.serversUnhealthy.Set(float64(summary.UnhealthyServers))
	c.serversDegraded.Set(float64(summary.DegradedServers))
	c.fleetAvgResponse.Set(summary.AvgResponseTime)
}

// RecordBreakers and RecordPools label each series with the tenant that
// owns the server, not the tenant that requested the report, so the
// remote-write exporter ships every row to its own org.

func (c *Collector) RecordBreakers(breakers []analytics.BreakerStatus) {
	for _, b := range breakers {
		var value float64
		switch b.State {
		case db.BreakerOpen:
			value = 1
		case db.BreakerHalfOpen:
			value = 0.5
		}
		c.breakerState.WithLabelValues(b.TenantID, b.ServerID, b.ServerName, b.ServiceName).Set(value)
	}
}

func (c *Collector) RecordPools(pools []analytics.PoolStats) {
	for _, p := range pools {
		c.poolUtilization.WithLabelValues(p.TenantID, p.ServerID, p.ServerName, p.PoolName).Set(p.UtilizationPercentage)
	}
}

func (c *Collector) RecordCleanup(results []retention.Result) {
	for _, r := range results {
		c.cleanupDeletedTotal.WithLabelValues(r.Table).Add(float64(r.RowsDeleted))
	}
}

func (c *Collector) RecordQueueSize(size int64) {
	c.probeQueueSize.WithLabelValues("server_probes").Set(float64(size))
}
