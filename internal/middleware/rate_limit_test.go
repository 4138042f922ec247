package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestTenantRateLimit_RequiresBoundTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewRateLimitMiddleware(unreachableRedis(t), &config.Config{DefaultRateLimit: 10}, logger.NewNop())
	router := gin.New()
	router.GET("/limited", m.TenantRateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTenantRateLimit_FailsOpenWhenRedisIsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewRateLimitMiddleware(unreachableRedis(t), &config.Config{DefaultRateLimit: 10}, logger.NewNop())
	router := gin.New()
	router.GET("/limited", m.TenantRateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	ctx := tenancy.WithTenant(context.Background(), &domain.Tenant{ID: "tenant-1", RateLimit: 5})
	req := httptest.NewRequest(http.MethodGet, "/limited", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGlobalRateLimit_FailsOpenWhenRedisIsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewRateLimitMiddleware(unreachableRedis(t), &config.Config{}, logger.NewNop())
	router := gin.New()
	router.GET("/open", m.GlobalRateLimit(1), m.AuthRateLimit(1), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
