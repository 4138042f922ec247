package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

type LocationService interface {
	ListByClient(ctx context.Context, principal *domain.Principal, clientID string) ([]dto.LocationResponse, error)
	Create(ctx context.Context, principal *domain.Principal, clientID string, req dto.CreateLocationRequest) (*dto.LocationResponse, error)
	GetByID(ctx context.Context, principal *domain.Principal, id string) (*dto.LocationResponse, error)
	Delete(ctx context.Context, principal *domain.Principal, id string) error
}

type LocationHandler struct {
	*BaseHandler
	service LocationService
}

func NewLocationHandler(service LocationService) *LocationHandler {
	return &LocationHandler{BaseHandler: &BaseHandler{}, service: service}
}

// ListLocations godoc
// @Summary List the locations of a client
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {array} dto.LocationResponse
// @Failure 404 {object} dto.Error
// @Router /clients/{id}/locations [get]
func (h *LocationHandler) ListLocations(c *gin.Context) {
	locations, err := h.service.ListByClient(h.RequestCtx(c), h.Principal(c), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

// CreateLocation godoc
// @Summary Add a location to a client
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param body body dto.CreateLocationRequest true "Location"
// @Success 201 {object} dto.LocationResponse
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 422 {object} dto.Error
// @Router /clients/{id}/locations [post]
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	location, err := h.service.Create(h.RequestCtx(c), h.Principal(c), c.Param("id"), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

// GetLocation godoc
// @Summary Get a location
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 200 {object} dto.LocationResponse
// @Failure 404 {object} dto.Error
// @Router /locations/{id} [get]
func (h *LocationHandler) GetLocation(c *gin.Context) {
	location, err := h.service.GetByID(h.RequestCtx(c), h.Principal(c), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

// DeleteLocation godoc
// @Summary Delete a location
// @Tags locations
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 204
// @Failure 403 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /locations/{id} [delete]
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	if err := h.service.Delete(h.RequestCtx(c), h.Principal(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
