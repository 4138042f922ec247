package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-auth-api/internal/utils"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags the request with an id, reusing a well-formed incoming one,
// and stores a logger carrying it in the request context.
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		meta := utils.RequestMeta{
			RequestID: id,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		c.Set(string(utils.RequestIDKey), meta.RequestID)
		c.Set(string(utils.ClientIPKey), meta.IPAddress)
		c.Set(string(utils.UserAgentKey), meta.UserAgent)

		ctx := utils.WithRequestMeta(c.Request.Context(), meta)
		ctx = logger.WithContext(ctx, log.With(zap.String("request_id", id)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
