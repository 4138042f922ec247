package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

//go:generate mockery --name UserService --output ../mocks
type UserService interface {
	ProfileService
	UpdateProfile(ctx context.Context, principal *domain.Principal, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	List(ctx context.Context, principal *domain.Principal, req dto.ListUsersRequest) (*dto.UserListResponse, error)
	Create(ctx context.Context, principal *domain.Principal, req dto.CreateUserRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.UserResponse, error)
	Update(ctx context.Context, principal *domain.Principal, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, principal *domain.Principal, id string) error
	ChangePassword(ctx context.Context, principal *domain.Principal, id string, req dto.ChangePasswordRequest) error
	Activate(ctx context.Context, principal *domain.Principal, id string) error
	Deactivate(ctx context.Context, principal *domain.Principal, id string) error
}

type UserHandler struct {
	*BaseHandler
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{BaseHandler: &BaseHandler{}, service: service}
}

// GetProfile godoc
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.Error
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.service.Profile(h.RequestCtx(c), h.Principal(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.UpdateProfileRequest true "Names"
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.Error
// @Failure 422 {object} dto.Error
// @Router /profile [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(h.RequestCtx(c), h.Principal(c), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users of the tenant
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email query string false "Email contains"
// @Param role query string false "Role"
// @Param active query bool false "Active"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.UserListResponse
// @Failure 403 {object} dto.Error
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	users, err := h.service.List(h.RequestCtx(c), h.Principal(c), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary Create a user in the caller's tenant
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Failure 409 {object} dto.Error
// @Failure 422 {object} dto.Error
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.service.Create(h.RequestCtx(c), h.Principal(c), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.Error
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetByID(h.RequestCtx(c), h.Principal(c), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 409 {object} dto.Error
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.service.Update(h.RequestCtx(c), h.Principal(c), c.Param("id"), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.service.Delete(h.RequestCtx(c), h.Principal(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangePassword godoc
// @Summary Change a password
// @Description Users change their own password given the current one; admins change any password in their tenant. All refresh tokens of the user are revoked.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body dto.ChangePasswordRequest true "Passwords"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router /users/{id}/change-password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.service.ChangePassword(h.RequestCtx(c), h.Principal(c), c.Param("id"), req); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password changed successfully"})
}

// ActivateUser godoc
// @Summary Activate a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /users/{id}/activate [post]
func (h *UserHandler) ActivateUser(c *gin.Context) {
	if err := h.service.Activate(h.RequestCtx(c), h.Principal(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User activated successfully"})
}

// DeactivateUser godoc
// @Summary Deactivate a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /users/{id}/deactivate [post]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	if err := h.service.Deactivate(h.RequestCtx(c), h.Principal(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deactivated successfully"})
}
