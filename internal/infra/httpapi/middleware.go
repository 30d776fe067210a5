package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	userIDHeader    = "X-User-ID"
	ctxLoggerKey    = "logger"
)

// RequestLogger tags every request with an ID and logs it when done. Handlers get the
// tagged entry through requestLogger.
func RequestLogger(base *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Header(requestIDHeader, requestID)

		entry := base.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
		})
		c.Set(ctxLoggerKey, entry)

		start := time.Now()
		c.Next()

		fields := logrus.Fields{"status": c.Writer.Status(), "duration": time.Since(start).String()}
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.WithFields(fields).Error("Request failed")
		case status >= 400:
			entry.WithFields(fields).Warn("Request rejected")
		default:
			entry.WithFields(fields).Info("Request handled")
		}
	}
}

func requestLogger(c *gin.Context, fallback *logrus.Entry) *logrus.Entry {
	if v, ok := c.Get(ctxLoggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return fallback
}
