package domain

import (
	"errors"
	"slices"
	"time"
)

type SecurityEventType string

const (
	SecurityEventLogin           SecurityEventType = "LOGIN"
	SecurityEventLoginFailed     SecurityEventType = "LOGIN_FAILED"
	SecurityEventTokenRefreshed  SecurityEventType = "TOKEN_REFRESHED"
	SecurityEventRefreshRejected SecurityEventType = "REFRESH_REJECTED"
	SecurityEventLogout          SecurityEventType = "LOGOUT"
	SecurityEventPasswordChanged SecurityEventType = "PASSWORD_CHANGED"
	SecurityEventUserDeactivated SecurityEventType = "USER_DEACTIVATED"
)

var (
	ErrInvalidSecurityEventType = errors.New("invalid security event type")
	ErrInvalidTimeRange         = errors.New("invalid time range")
)

var securityEventTypes = []SecurityEventType{
	SecurityEventLogin,
	SecurityEventLoginFailed,
	SecurityEventTokenRefreshed,
	SecurityEventRefreshRejected,
	SecurityEventLogout,
	SecurityEventPasswordChanged,
	SecurityEventUserDeactivated,
}

func IsValidSecurityEventType(t string) bool {
	return slices.Contains(securityEventTypes, SecurityEventType(t))
}

// SecurityEvent is an authentication audit record. It is shipped to the search
// cluster through the queue and never stored in postgres.
type SecurityEvent struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenant_id"`
	UserID    string            `json:"user_id,omitempty"`
	Type      SecurityEventType `json:"type"`
	IPAddress string            `json:"ip_address,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
}

type SecurityEventFilter struct {
	TenantID  string            `json:"tenant_id"`
	UserID    string            `json:"user_id"`
	Type      SecurityEventType `json:"type"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
}
