package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
)

// SkipList holds path prefixes that are served without a tenancy holder
type SkipList []string

// DefaultSkipList covers the operational endpoints
var DefaultSkipList = SkipList{"/health", "/metrics", "/swagger", "/debug"}

func (s SkipList) Skips(path string) bool {
	for _, prefix := range s {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// TenantScope attaches a fresh, unbound tenancy holder to every request
// outside skip. Authentication binds it later; until then tenant-owned
// queries match nothing.
func TenantScope(skip SkipList) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skip.Skips(c.Request.URL.Path) {
			c.Next()
			return
		}

		holder := tenancy.New()
		c.Request = c.Request.WithContext(tenancy.WithContext(c.Request.Context(), holder))
		c.Next()
		holder.Clear()
	}
}
