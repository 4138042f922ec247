package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/metrics"
)

// Metrics observes the latency of every request by route template
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
