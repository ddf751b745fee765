package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xbpneus/authgate/domain"
)

// Request metric names
const (
	MetricRequestDuration = "http.request.duration_ms"
	metricRequestsPrefix  = "http.requests."
)

// RequestMetrics counts responses by status class and records latency
func RequestMetrics(sink domain.MetricsSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		sink.Increment(ctx, StatusCounter(c.Writer.Status()))
		sink.Observe(ctx, MetricRequestDuration, float64(time.Since(start).Milliseconds()))
	}
}

// StatusCounter is the counter name for a response status, e.g. http.requests.4xx
func StatusCounter(status int) string {
	return fmt.Sprintf("%s%dxx", metricRequestsPrefix, status/100)
}
