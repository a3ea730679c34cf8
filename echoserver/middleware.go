package echoserver

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/webrequest/logger"
)

const requestIDHeader = "X-Request-Id"

// requestID injects a unique X-Request-Id header into every request/response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// bodyLimit caps request bodies at n bytes.
func bodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// recovery turns handler panics into 500 responses.
func recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// requestLogger logs every request at a level chosen by status.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		fields := logger.MergeWithDuration(logger.Fields(
			logger.FieldMethod, c.Request.Method,
			logger.FieldURL, path,
			logger.FieldStatus, status,
			logger.FieldRequestID, c.GetString(logger.FieldRequestID),
			logger.FieldBytes, c.Writer.Size(),
		), time.Since(start))

		switch {
		case status >= 500:
			log.Error("request served", fields)
		case status >= 400:
			log.Warn("request served", fields)
		default:
			log.Debug("request served", fields)
		}
	}
}
