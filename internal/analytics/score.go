package analytics

import (
	"fmt"
	"math"
)

// Performance score weights. Response time is inverted and capped at
// 1000ms, request volume is capped at 1000 requests, so each term is
// normalized to [0,1] before weighting and the final score lands in [0,100].
const (
	weightUptime        = 0.5
	weightResponseTime  = 0.3
	weightRequestVolume = 0.2

	responseTimeCapMs = 1000.0
	requestCountCap   = 1000.0
)

// PerformanceScore computes the weighted composite used by the ranking
// query. Uptime is a percentage in [0,100].
func PerformanceScore(uptime, avgResponseTimeMs float64, requestCount int64) float64 {
	rt := math.Min(avgResponseTimeMs/responseTimeCapMs, 1)
	vol := math.Min(float64(requestCount)/requestCountCap, 1)

	score := weightUptime*uptime + weightResponseTime*(1-rt)*100 + weightRequestVolume*vol*100
	return math.Round(score*100) / 100
}

// performanceScoreExpr is the SQL rendition of PerformanceScore, built from
// the same constants so the two cannot drift apart. The caps render with a
// decimal point: request_count is an integer column and dividing by a bare
// 1000 would truncate every sub-cap volume term to zero.
func performanceScoreExpr() string {
	return fmt.Sprintf(
		"ROUND((uptime * %g + (1 - LEAST(avg_response_time / %.1f, 1)) * %g * 100 + LEAST(request_count / %.1f, 1) * %g * 100)::numeric, 2)",
		weightUptime, responseTimeCapMs, weightResponseTime, requestCountCap, weightRequestVolume,
	)
}
