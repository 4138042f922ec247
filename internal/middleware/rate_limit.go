package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

const rateLimitWindow = time.Minute

type RateLimitMiddleware struct {
	redis  redis.Cmdable
	config *config.Config
	logger *logger.Logger
	now    func() time.Time
}

func NewRateLimitMiddleware(redis redis.Cmdable, config *config.Config, logger *logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redis:  redis,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// TenantRateLimit limits requests per tenant per minute using the tenant's
// own rate limit. It must run after authentication has bound the tenant.
func (m *RateLimitMiddleware) TenantRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := tenancy.FromContext(c.Request.Context()).Current()
		if tenant == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Tenant required for rate limiting"})
			return
		}

		limit := tenant.RateLimit
		if limit <= 0 {
			limit = m.config.DefaultRateLimit
		}
		m.limit(c, fmt.Sprintf("rate_limit:tenant:%s", tenant.ID), limit, "Rate limit exceeded")
	}
}

// GlobalRateLimit limits requests per client IP per minute
func (m *RateLimitMiddleware) GlobalRateLimit(limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.limit(c, fmt.Sprintf("rate_limit:global:%s", c.ClientIP()), limit, "Global rate limit exceeded")
	}
}

// AuthRateLimit is the stricter per-IP limit of the credential endpoints
func (m *RateLimitMiddleware) AuthRateLimit(limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.limit(c, fmt.Sprintf("rate_limit:auth:%s", c.ClientIP()), limit, "Too many authentication attempts")
	}
}

// limit counts the request in a fixed one-minute window. Redis errors let the
// request through.
func (m *RateLimitMiddleware) limit(c *gin.Context, key string, limit int, message string) {
	ctx := c.Request.Context()
	reset := strconv.FormatInt(m.now().Add(rateLimitWindow).Unix(), 10)

	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.FromContext(ctx, m.logger).Error("Redis error in rate limiting", err)
		c.Next()
		return
	}

	current := int(incr.Val())
	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Header("X-RateLimit-Reset", reset)

	if current > limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": message,
			"limit": limit,
			"reset": reset,
		})
		return
	}

	c.Next()
}
