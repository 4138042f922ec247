package utils

import (
	"context"
	"errors"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

type ContextKey string

// Gin keys copied into the request context by the handlers
const (
	PrincipalKey ContextKey = "principal"
	RequestIDKey ContextKey = "request_id"
	ClientIPKey  ContextKey = "client_ip"
	UserAgentKey ContextKey = "user_agent"
)

var ErrNoPrincipalInContext = errors.New("no authenticated principal found in context")

// RequestMeta describes where a request came from, for security events
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

func WithPrincipal(ctx context.Context, principal *domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

func GetPrincipalFromContext(ctx context.Context) (*domain.Principal, error) {
	principal, ok := ctx.Value(PrincipalKey).(*domain.Principal)
	if !ok || principal == nil || principal.User == nil {
		return nil, ErrNoPrincipalInContext
	}
	return principal, nil
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	ctx = context.WithValue(ctx, RequestIDKey, meta.RequestID)
	ctx = context.WithValue(ctx, ClientIPKey, meta.IPAddress)
	return context.WithValue(ctx, UserAgentKey, meta.UserAgent)
}

func GetRequestMeta(ctx context.Context) RequestMeta {
	return RequestMeta{
		RequestID: stringValue(ctx, RequestIDKey),
		IPAddress: stringValue(ctx, ClientIPKey),
		UserAgent: stringValue(ctx, UserAgentKey),
	}
}

func stringValue(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}
