package middleware

import (
	"strconv"
	"time"

	"todoserver/internal/core/telemetry"

	"github.com/gin-gonic/gin"
)

// unmatchedPath labels requests no route matched, keeping label values bounded.
const unmatchedPath = "unmatched"

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		path := c.FullPath()

		if path == "" {
			path = unmatchedPath
		}

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
