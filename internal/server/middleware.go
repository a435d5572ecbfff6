package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"swifteats/internal/correlation"
)

// CorrelationID accepts the caller's X-Correlation-ID or mints one, stores it
// on the request context and echoes it on the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlation.Header)
		ctx := correlation.NewContext(c.Request.Context(), id)
		c.Request = c.Request.WithContext(ctx)
		c.Header(correlation.Header, correlation.FromContext(ctx))
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("correlation_id", correlation.FromContext(c.Request.Context())),
		)
	}
}
