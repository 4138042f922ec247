package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/utils"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

type BaseHandler struct{}

func (h *BaseHandler) RequestCtx(ginCtx *gin.Context) context.Context {
	ctx := ginCtx.Request.Context()
	for k, v := range ginCtx.Keys {
		// Convert string keys to proper context key types to avoid collisions
		contextKey := utils.ContextKey(k)
		ctx = context.WithValue(ctx, contextKey, v)
	}
	return ctx
}

// Principal returns the authenticated caller, or nil on public routes
func (h *BaseHandler) Principal(ginCtx *gin.Context) *domain.Principal {
	value, exists := ginCtx.Get(string(utils.PrincipalKey))
	if !exists {
		return nil
	}
	principal, _ := value.(*domain.Principal)
	return principal
}

// RespondError writes err as a dto.Error with the status it maps to
func (h *BaseHandler) RespondError(ginCtx *gin.Context, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(ginCtx.Request.Context(), nil).Error("Request failed", err)
	}
	ginCtx.JSON(status, dto.Error{Error: message})
}

// BindError reports a malformed or invalid request body
func (h *BaseHandler) BindError(ginCtx *gin.Context, err error) {
	ginCtx.JSON(http.StatusUnprocessableEntity, dto.Error{Error: err.Error()})
}
