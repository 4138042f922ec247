package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

//go:generate mockery --name ClientService --output ../mocks
type ClientService interface {
	List(ctx context.Context, principal *domain.Principal, req dto.ListClientsRequest) (*dto.ClientListResponse, error)
	Create(ctx context.Context, principal *domain.Principal, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.ClientResponse, error)
	Update(ctx context.Context, principal *domain.Principal, id string, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	Delete(ctx context.Context, principal *domain.Principal, id string) error
}

type ClientHandler struct {
	*BaseHandler
	service ClientService
}

func NewClientHandler(service ClientService) *ClientHandler {
	return &ClientHandler{BaseHandler: &BaseHandler{}, service: service}
}

// ListClients godoc
// @Summary List clients of the tenant
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.ClientListResponse
// @Failure 401 {object} dto.Error
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	var req dto.ListClientsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	clients, err := h.service.List(h.RequestCtx(c), h.Principal(c), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// CreateClient godoc
// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateClientRequest true "Client"
// @Success 201 {object} dto.ClientResponse
// @Failure 403 {object} dto.Error
// @Failure 422 {object} dto.Error
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	client, err := h.service.Create(h.RequestCtx(c), h.Principal(c), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClient godoc
// @Summary Get a client
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} dto.ClientResponse
// @Failure 404 {object} dto.Error
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.service.GetByID(h.RequestCtx(c), h.Principal(c), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient godoc
// @Summary Update a client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param body body dto.UpdateClientRequest true "Fields to change"
// @Success 200 {object} dto.ClientResponse
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /clients/{id} [patch]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	client, err := h.service.Update(h.RequestCtx(c), h.Principal(c), c.Param("id"), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete a client and its locations
// @Tags clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 204
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	if err := h.service.Delete(h.RequestCtx(c), h.Principal(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
