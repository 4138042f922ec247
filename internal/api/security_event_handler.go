package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
)

type SecurityEventService interface {
	Search(ctx context.Context, query dto.SecurityEventQuery) ([]dto.SecurityEventResponse, error)
}

type SecurityEventHandler struct {
	*BaseHandler
	service SecurityEventService
}

func NewSecurityEventHandler(service SecurityEventService) *SecurityEventHandler {
	return &SecurityEventHandler{BaseHandler: &BaseHandler{}, service: service}
}

// ListSecurityEvents godoc
// @Summary Search the tenant's security events
// @Description Logins, refreshes, logouts and password changes of the caller's tenant, newest first
// @Tags security-events
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "User ID"
// @Param type query string false "Event type" Enums(LOGIN, LOGIN_FAILED, TOKEN_REFRESHED, REFRESH_REJECTED, LOGOUT, PASSWORD_CHANGED, USER_DEACTIVATED)
// @Param start_time query string false "Start time (RFC3339 or YYYY-MM-DD)"
// @Param end_time query string false "End time (RFC3339 or YYYY-MM-DD, date-only covers the whole day)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {array} dto.SecurityEventResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router /security-events [get]
func (h *SecurityEventHandler) ListSecurityEvents(c *gin.Context) {
	var query dto.SecurityEventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	events, err := h.service.Search(h.RequestCtx(c), query)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
