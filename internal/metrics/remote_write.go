package metrics

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/prometheus/prompb"
	"go.uber.org/zap"
)

// StartRemoteWrite pushes the gathered metrics to a Prometheus
// remote-write endpoint (Mimir) on the flush interval, sharded by the
// tenant_id label so multi-tenant dashboards stay isolated. Series
// without a tenant_id label are process-local and are not shipped.
func (c *Collector) StartRemoteWrite(ctx context.Context) {
	if c.config.URL == "" {
		return
	}

	ticker := time.NewTicker(c.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.flush(); err != nil {
				c.logger.Error("Remote write flush failed", zap.Error(err))
			}
		}
	}
}

func (c *Collector) flush() error {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	series := familiesToSeries(mfs)
	if len(series) == 0 {
		return nil
	}

	for i := 0; i < len(series); i += c.config.BatchSize {
		end := i + c.config.BatchSize
		if end > len(series) {
			end = len(series)
		}

		if err := c.sendBatch(series[i:end]); err != nil {
			return fmt.Errorf("failed to send batch: %w", err)
		}
	}

	return nil
}

func familiesToSeries(mfs []*dto.MetricFamily) []prompb.TimeSeries {
	var series []prompb.TimeSeries
	now := time.Now().UnixNano() / int64(time.Millisecond)

	for _, mf := range mfs {
		for _, m := range mf.Metric {
			var tenantID string
			labels := make([]prompb.Label, 0, len(m.Label)+1)

			for _, l := range m.Label {
				if l.GetName() == "tenant_id" {
					tenantID = l.GetValue()
				}
				labels = append(labels, prompb.Label{
					Name:  l.GetName(),
					Value: l.GetValue(),
				})
			}

			if tenantID == "" {
				continue
			}

			labels = append(labels, prompb.Label{
				Name:  "__name__",
				Value: mf.GetName(),
			})

			var value float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value = m.Counter.GetValue()
			case dto.MetricType_GAUGE:
				value = m.Gauge.GetValue()
			case dto.MetricType_HISTOGRAM:
				for _, bucket := range m.Histogram.Bucket {
					bucketLabels := append([]prompb.Label{}, labels...)
					bucketLabels = append(bucketLabels, prompb.Label{
						Name:  "le",
						Value: fmt.Sprintf("%g", bucket.GetUpperBound()),
					})

					series = append(series, prompb.TimeSeries{
						Labels: bucketLabels,
						Samples: []prompb.Sample{{
							Value:     float64(bucket.GetCumulativeCount()),
							Timestamp: now,
						}},
					})
				}
				continue
			default:
				continue
			}

			series = append(series, prompb.TimeSeries{
				Labels: labels,
				Samples: []prompb.Sample{{
					Value:     value,
					Timestamp: now,
				}},
			})
		}
	}

	return series
}

func (c *Collector) sendBatch(series []prompb.TimeSeries) error {
	byTenant := make(map[string][]prompb.TimeSeries)
	for _, ts := range series {
		for _, label := range ts.Labels {
			if label.Name == "tenant_id" {
				byTenant[label.Value] = append(byTenant[label.Value], ts)
				break
			}
		}
	}

	client := &http.Client{Timeout: 30 * time.Second}

	for tenantID, tenantSeries := range byTenant {
		req := &prompb.WriteRequest{
			Timeseries: tenantSeries,
		}

		data, err := req.Marshal()
		if err != nil {
			return err
		}

		compressed := snappy.Encode(nil, data)

		httpReq, err := http.NewRequest(http.MethodPost, c.config.URL+"/api/v1/push", bytes.NewReader(compressed))
		if err != nil {
			return err
		}

		httpReq.Header.Set("Content-Type", "application/x-protobuf")
		httpReq.Header.Set("Content-Encoding", "snappy")
		httpReq.Header.Set(c.config.TenantHeader, tenantID)
		if c.config.AuthToken != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return err
		}
		resp.Body.Close()

		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("remote write failed: %s", resp.Status)
		}
	}

	return nil
}
