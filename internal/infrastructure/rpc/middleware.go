package rpc

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ledger-engine/internal/infrastructure/metrics"
)

// prometheusMiddleware records request duration and counts for every
// route, the way the reference service's Prometheus middleware does.
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPDuration.WithLabelValues(c.Request.Method, endpoint, status).Observe(duration.Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
	}
}
