package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/service"
	"github.com/kingrain94/tenant-auth-api/internal/utils"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// Authenticator resolves the bearer header of a request into a principal
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*domain.Principal, error)
}

type AuthMiddleware struct {
	authenticator Authenticator
	logger        *logger.Logger
}

func NewAuthMiddleware(authenticator Authenticator, logger *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// JWTAuth runs the authentication pipeline. Token problems of any kind get the
// same 401 body; inactive users and tenants get a 403.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		principal, err := m.authenticator.Authenticate(ctx, c.GetHeader("Authorization"))
		if err != nil {
			var rejected *service.RejectedError
			if !errors.As(err, &rejected) {
				logger.FromContext(ctx, m.logger).Error("Authentication failed", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			if rejected.Reason == service.ReasonInactiveOrMissing {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User account is inactive or not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(string(utils.PrincipalKey), principal)
		c.Request = c.Request.WithContext(utils.WithPrincipal(ctx, principal))
		c.Next()
	}
}

// RequireRole lets the request through when the principal holds any of roles
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(string(utils.PrincipalKey))
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		principal, ok := value.(*domain.Principal)
		if !ok || principal.User == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid principal type"})
			return
		}

		if !domain.HasAnyRole(principal.User.EffectiveRoles(), roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Next()
	}
}
