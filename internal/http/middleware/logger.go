package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"tripcleaner/internal/utils"
)

// Logger prints one line per request in the LogEvent format so HTTP lines
// and pipeline lines interleave under the same request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		utils.LogEvent(GetRequestID(c), "http", "request",
			fmt.Sprintf("method=%s path=%s status=%d bytes=%d latency_ms=%.3f ip=%s",
				c.Request.Method,
				c.Request.URL.Path,
				c.Writer.Status(),
				c.Writer.Size(),
				float64(time.Since(start).Microseconds())/1000.0,
				c.ClientIP()))
	}
}
