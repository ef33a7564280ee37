package middleware

import (
	"net/http"
	"time"

	"github.com/curasense/auth-service/internal/constants"
	ctxutil "github.com/curasense/auth-service/pkg/context"
	"github.com/curasense/auth-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestContext stamps every request with an ID, the client address, and
// the user agent, then logs start and completion. The ID is taken from
// X-Request-ID when the caller supplies one, so log lines correlate across
// services.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestMeta(
			c.Request.Context(),
			requestID,
			c.ClientIP(),
			c.GetHeader("User-Agent"),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		start := time.Now()

		logger.InfoWithContext(ctx, "Request started").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Log()

		c.Next()

		logger.InfoWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(time.Since(start)).
			Log()
	}
}

// Recovery turns a handler panic into a 500 without killing the process.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.LogPanic(rec)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					constants.BuildErrorResponse("internal server error", nil))
			}
		}()
		c.Next()
	}
}
