package handlers

import (
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// CORS allows any origin, matching the browser front end served from other
// hosts during development.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Accept", "Origin", "X-Requested-With"},
		ExposeHeaders:   []string{RequestIDHeader},
		MaxAge:          12 * time.Hour,
	})
}

// RequestLogger tags each request with an id, stores a scoped logger in the
// request context and writes one access log line when the request finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, requestID)

		entry := log.WithField("request_id", requestID)
		c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), entry))

		c.Next()

		fields := log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.WithFields(fields).Error("Request")
		case status >= http.StatusBadRequest:
			entry.WithFields(fields).Warn("Request")
		default:
			entry.WithFields(fields).Info("Request")
		}
	}
}

// Recovery turns a panic into a JSON 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		log.FromContext(c.Request.Context()).WithField("panic", err).Error("Panic recovered")
		jsonError(c, http.StatusInternalServerError, "Internal server error")
	})
}
