package restapi

import (
	"time"

	"wallet_connector/internal/app/port"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through port.Logger.
func RequestLogger(logger port.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		}
		if len(c.Errors) > 0 {
			logger.Warn("HTTP request failed", append(args, "errors", c.Errors.String())...)
			return
		}
		logger.Debug("HTTP request", args...)
	}
}
