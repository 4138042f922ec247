package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/middleware"
	"github.com/kingrain94/tenant-auth-api/internal/service"
)

type Server struct {
	config         *config.Config
	auth           *AuthHandler
	user           *UserHandler
	tenant         *TenantHandler
	client         *ClientHandler
	location       *LocationHandler
	securityEvent  *SecurityEventHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimit      *middleware.RateLimitMiddleware
	validation     *middleware.ValidationMiddleware
}

// Services groups what the handlers call into
type Services struct {
	Auth          *service.AuthService
	User          *service.UserService
	Tenant        *service.TenantService
	Client        *service.ClientService
	Location      *service.LocationService
	SecurityEvent *service.SecurityEventService
}

func NewServer(
	cfg *config.Config,
	services Services,
	auth *middleware.AuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	validation *middleware.ValidationMiddleware,
) *Server {
	return &Server{
		config:         cfg,
		auth:           NewAuthHandler(services.Auth, services.User),
		user:           NewUserHandler(services.User),
		tenant:         NewTenantHandler(services.Tenant),
		client:         NewClientHandler(services.Client),
		location:       NewLocationHandler(services.Location),
		securityEvent:  NewSecurityEventHandler(services.SecurityEvent),
		authMiddleware: auth,
		rateLimit:      rateLimit,
		validation:     validation,
	}
}

func (s *Server) SetupRoutes(api *gin.RouterGroup) {
	api.Use(s.validation.ValidateRequestSize(s.config.MaxRequestBodyBytes))
	api.Use(s.validation.ValidateContentType("application/json"))
	api.Use(s.rateLimit.GlobalRateLimit(s.config.GlobalRateLimit))

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.rateLimit.AuthRateLimit(s.config.AuthRateLimit), s.auth.Login)
		auth.POST("/refresh", s.rateLimit.AuthRateLimit(s.config.AuthRateLimit), s.auth.Refresh)
		auth.POST("/logout", s.authMiddleware.JWTAuth(), s.auth.Logout)
		auth.GET("/me", s.authMiddleware.JWTAuth(), s.auth.Me)
	}

	protected := api.Group("", s.authMiddleware.JWTAuth(), s.rateLimit.TenantRateLimit())
	{
		protected.GET("/profile", s.user.GetProfile)
		protected.PATCH("/profile", s.user.UpdateProfile)

		users := protected.Group("/users")
		users.GET("", s.user.ListUsers)
		users.POST("", s.user.CreateUser)
		users.GET("/:id", s.user.GetUser)
		users.PATCH("/:id", s.user.UpdateUser)
		users.DELETE("/:id", s.user.DeleteUser)
		users.POST("/:id/change-password", s.user.ChangePassword)
		users.POST("/:id/activate", s.user.ActivateUser)
		users.POST("/:id/deactivate", s.user.DeactivateUser)

		tenants := protected.Group("/tenants")
		tenants.GET("/:id", s.tenant.GetTenant)
		tenants.PATCH("/:id", s.tenant.UpdateTenant)
		tenants.POST("/:id/status", s.tenant.ChangeTenantStatus)

		clients := protected.Group("/clients")
		clients.GET("", s.client.ListClients)
		clients.POST("", s.client.CreateClient)
		clients.GET("/:id", s.client.GetClient)
		clients.PATCH("/:id", s.client.UpdateClient)
		clients.DELETE("/:id", s.client.DeleteClient)
		clients.GET("/:id/locations", s.location.ListLocations)
		clients.POST("/:id/locations", s.location.CreateLocation)

		locations := protected.Group("/locations")
		locations.GET("/:id", s.location.GetLocation)
		locations.DELETE("/:id", s.location.DeleteLocation)

		protected.GET("/security-events", s.authMiddleware.RequireRole(domain.RoleAdmin), s.securityEvent.ListSecurityEvents)
	}
}
