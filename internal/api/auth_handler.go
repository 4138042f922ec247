package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

//go:generate mockery --name AuthService --output ../mocks
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, principal *domain.Principal, refreshToken string) error
}

// ProfileService is the part of the user service behind /auth/me
type ProfileService interface {
	Profile(ctx context.Context, principal *domain.Principal) (*dto.UserResponse, error)
}

type AuthHandler struct {
	*BaseHandler
	service  AuthService
	profiles ProfileService
}

func NewAuthHandler(service AuthService, profiles ProfileService) *AuthHandler {
	return &AuthHandler{BaseHandler: &BaseHandler{}, service: service, profiles: profiles}
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for an access token and a refresh token. The subdomain picks the tenant when the email exists in several.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Failure 422 {object} dto.Error
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Login(h.RequestCtx(c), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Refresh tokens
// @Description Rotate a refresh token. The presented token can be used only once.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Refresh(h.RequestCtx(c), req.RefreshToken)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Log out
// @Description Revoke the current access token and, when given, the caller's refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.LogoutRequest false "Refresh token to revoke"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.Error
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}

	if err := h.service.Logout(h.RequestCtx(c), h.Principal(c), req.RefreshToken); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.Error
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.profiles.Profile(h.RequestCtx(c), h.Principal(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
