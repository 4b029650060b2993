package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mcpgateway/registry-insights/internal/config"
	"github.com/mcpgateway/registry-insights/internal/db"
)

func strPtr(s string) *string { return &s }

func gaugeFamily(name string, value float64, labels map[string]string) *dto.MetricFamily {
	var pairs []*dto.LabelPair
	for k, v := range labels {
		pairs = append(pairs, &dto.LabelPair{Name: strPtr(k), Value: strPtr(v)})
	}

	return &dto.MetricFamily{
		Name: strPtr(name),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Label: pairs,
			Gauge: &dto.Gauge{Value: &value},
		}},
	}
}

// Series without a tenant_id label stay process-local: the fleet-wide
// health gauges are deliberately unlabeled so a global summary is never
// shipped into one tenant's org.
func TestFamiliesToSeriesSkipsUntenantedSeries(t *testing.T) {
	mfs := []*dto.MetricFamily{
		gaugeFamily("gateway_servers_total", 10, nil),
		gaugeFamily("gateway_probe_up", 1, map[string]string{
			"tenant_id": "tenant-1",
			"server_id": "srv-1",
		}),
	}

	series := familiesToSeries(mfs)
	require.Len(t, series, 1)

	names := make(map[string]string)
	for _, l := range series[0].Labels {
		names[l.Name] = l.Value
	}
	assert.Equal(t, "gateway_probe_up", names["__name__"])
	assert.Equal(t, "tenant-1", names["tenant_id"])
}

func TestFlushShardsBatchesByTenantHeader(t *testing.T) {
	var orgIDs []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgIDs = append(orgIDs, r.Header.Get("X-Scope-OrgID"))
		assert.Equal(t, "snappy", r.Header.Get("Content-Encoding"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	testCollector.RecordProbe(&db.ServerMetric{
		ProbeType:      "endpoint",
		HealthStatus:   db.HealthStatusHealthy,
		ResponseTimeMs: 50,
	}, &db.Server{ID: "srv-rw", TenantID: "tenant-rw", Name: "remote"})

	c := &Collector{
		config: &config.RemoteWriteConfig{
			URL:          ts.URL,
			TenantHeader: "X-Scope-OrgID",
			BatchSize:    1000,
		},
		logger: zap.NewNop(),
	}

	require.NoError(t, c.flush())
	assert.Contains(t, orgIDs, "tenant-rw")
	assert.NotContains(t, orgIDs, "")
}

func TestFlushSurfacesSendErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	testCollector.RecordProbe(&db.ServerMetric{
		ProbeType:      "endpoint",
		HealthStatus:   db.HealthStatusHealthy,
		ResponseTimeMs: 50,
	}, &db.Server{ID: "srv-rw", TenantID: "tenant-rw", Name: "remote"})

	c := &Collector{
		config: &config.RemoteWriteConfig{
			URL:          ts.URL,
			TenantHeader: "X-Scope-OrgID",
			BatchSize:    1000,
		},
		logger: zap.NewNop(),
	}

	err := c.flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote write failed")
}
