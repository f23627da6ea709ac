package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader porte l'identifiant de corrélation d'une requête.
const RequestIDHeader = "X-Request-ID"

// requestIDKey est la clé du contexte Gin où l'identifiant est rangé.
const requestIDKey = "request_id"

// RequestLogger journalise chaque requête avec sa durée et attribue un identifiant
// de corrélation (repris de l'en-tête X-Request-ID s'il est fourni).
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// RequestID retourne l'identifiant attribué par RequestLogger, ou "" hors middleware.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
