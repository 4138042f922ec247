package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

//go:generate mockery --name TenantService --output ../mocks
type TenantService interface {
	GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.TenantResponse, error)
	Update(ctx context.Context, principal *domain.Principal, id string, req dto.UpdateTenantRequest) (*dto.TenantResponse, error)
	ChangeStatus(ctx context.Context, principal *domain.Principal, id string, req dto.ChangeTenantStatusRequest) (*dto.TenantResponse, error)
}

type TenantHandler struct {
	*BaseHandler
	service TenantService
}

func NewTenantHandler(service TenantService) *TenantHandler {
	return &TenantHandler{BaseHandler: &BaseHandler{}, service: service}
}

// GetTenant godoc
// @Summary Get a tenant
// @Description Admins can read their own tenant only
// @Tags tenants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Success 200 {object} dto.TenantResponse
// @Failure 401 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /tenants/{id} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	tenant, err := h.service.GetByID(h.RequestCtx(c), h.Principal(c), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// UpdateTenant godoc
// @Summary Update a tenant
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param body body dto.UpdateTenantRequest true "Fields to change"
// @Success 200 {object} dto.TenantResponse
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 422 {object} dto.Error
// @Router /tenants/{id} [patch]
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req dto.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tenant, err := h.service.Update(h.RequestCtx(c), h.Principal(c), c.Param("id"), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// ChangeTenantStatus godoc
// @Summary Move a tenant between trial, active and suspended
// @Tags tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param body body dto.ChangeTenantStatusRequest true "Target status"
// @Success 200 {object} dto.TenantResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /tenants/{id}/status [post]
func (h *TenantHandler) ChangeTenantStatus(c *gin.Context) {
	var req dto.ChangeTenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tenant, err := h.service.ChangeStatus(h.RequestCtx(c), h.Principal(c), c.Param("id"), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tenant)
}
