package api

import (
	"errors"
	"net/http"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/password"
	"github.com/kingrain94/tenant-auth-api/internal/service"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
)

type errorMapping struct {
	err     error
	status  int
	message string // empty means the error's own text
}

var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid or expired refresh token"},
	{service.ErrNotAuthenticated, http.StatusUnauthorized, "User not authenticated"},

	{service.ErrInactiveAccount, http.StatusForbidden, "User account is inactive or not found"},
	{service.ErrAccessDenied, http.StatusForbidden, "Access denied"},
	{tenancy.ErrMissingTenantContext, http.StatusForbidden, "Access denied"},
	{tenancy.ErrCrossTenantWrite, http.StatusForbidden, "Access denied"},

	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrTenantNotFound, http.StatusNotFound, "Tenant not found"},
	{service.ErrClientNotFound, http.StatusNotFound, "Client not found"},
	{service.ErrLocationNotFound, http.StatusNotFound, "Location not found"},

	{service.ErrEmailAlreadyExists, http.StatusConflict, "Email already exists"},
	{service.ErrTenantExists, http.StatusConflict, "Tenant already exists"},

	{service.ErrRefreshTokenRequired, http.StatusBadRequest, "Refresh token is required"},
	{service.ErrCurrentPasswordNeeded, http.StatusBadRequest, "Current password is required"},
	{service.ErrInvalidPassword, http.StatusBadRequest, "Current password is incorrect"},
	{service.ErrWeakPassword, http.StatusBadRequest, "Password must be at least 8 characters long"},
	{service.ErrSelfDeactivation, http.StatusBadRequest, "You cannot deactivate your own account"},
	{password.ErrTooLong, http.StatusBadRequest, ""},
	{domain.ErrInvalidRole, http.StatusBadRequest, ""},
	{domain.ErrInvalidTenantStatus, http.StatusBadRequest, ""},
	{domain.ErrInvalidSubdomain, http.StatusBadRequest, ""},
	{domain.ErrInvalidTenantName, http.StatusBadRequest, ""},
	{domain.ErrInvalidSecurityEventType, http.StatusBadRequest, ""},
	{domain.ErrInvalidTimeRange, http.StatusBadRequest, ""},
}

// statusForError maps a service error to its HTTP status and public message.
// Unknown errors are 500s and their text is not exposed.
func statusForError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.message == "" {
				return m.status, err.Error()
			}
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}
