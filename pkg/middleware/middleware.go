package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lakehose/internal/logger"
)

// RequestLogger logs one line per HTTP request after it completes.
// Server errors log at error level so a failing transform callback
// shows up without debug logging.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []interface{}{
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"method", c.Request.Method,
			"path", path,
			"client_ip", c.ClientIP(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, "error", errs)
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Errorw("HTTP request", fields...)
		} else {
			log.Infow("HTTP request", fields...)
		}
	}
}

// Recovery converts a handler panic into a 500 response. The delivery
// stream retries the whole batch on a 500, so a panic must never take
// the process down mid-batch.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorw("Panic recovered",
			"error", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
	})
}

// RequestID echoes or assigns the X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
