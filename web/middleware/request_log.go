package middleware

import (
	"time"

	"github.com/authsvc/auth-service/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader  = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestLogger tags each request with an id and logs it once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		logger.Infof("%s %s %d %s id=%s ip=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), id, c.ClientIP())
	}
}
