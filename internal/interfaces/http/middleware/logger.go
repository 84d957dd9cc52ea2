package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tontine.backend/pkg/logger"
)

// quietPaths are polled by probes and scrapers and are not worth a log line
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// LoggerMiddleware logs HTTP requests using the structured logger
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if quietPaths[path] && c.Writer.Status() < 500 {
			return
		}
		if raw != "" {
			path = path + "?" + raw
		}
		ctx := c.Request.Context()
		for _, e := range c.Errors {
			logger.Warn(ctx, "Handler error", zap.String("path", path), zap.Error(e.Err))
		}
		logger.LogRequest(ctx, c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}
