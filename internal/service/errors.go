package service

import "errors"

var (
	// Authentication errors
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
	ErrInactiveAccount      = errors.New("user account is inactive or not found")
	ErrAccessDenied         = errors.New("access denied")

	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantExists   = errors.New("tenant already exists")

	// User errors
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrInvalidPassword       = errors.New("current password is incorrect")
	ErrCurrentPasswordNeeded = errors.New("current password is required")
	ErrWeakPassword          = errors.New("password must be at least 8 characters long")
	ErrSelfDeactivation      = errors.New("you cannot deactivate your own account")

	// Client errors
	ErrClientNotFound   = errors.New("client not found")
	ErrLocationNotFound = errors.New("location not found")
)

var (
	// Pipeline errors
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrTenantMismatch   = errors.New("token tenant does not match user")
)
