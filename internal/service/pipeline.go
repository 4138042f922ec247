package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/revocation"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/internal/token"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

// Stage is the last step a request reached while being authenticated
type Stage string

const (
	StageTokenPresented    Stage = "token_presented"
	StageTokenDecoded      Stage = "token_decoded"
	StageRevocationChecked Stage = "revocation_checked"
	StageUserResolved      Stage = "user_resolved"
	StageTenantBound       Stage = "tenant_bound"
)

type RejectReason string

const (
	ReasonMissingToken      RejectReason = "missing_token"
	ReasonInvalidToken      RejectReason = "invalid_token"
	ReasonRevoked           RejectReason = "revoked"
	ReasonInactiveOrMissing RejectReason = "inactive_or_missing"
)

// RejectedError is returned by Authenticate when the request may not proceed
type RejectedError struct {
	Stage  Stage
	Reason RejectReason
	Err    error
}

func (e *RejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication rejected at %s (%s): %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication rejected at %s (%s)", e.Stage, e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Pipeline turns a bearer token into an authenticated principal and binds
// the principal's tenant to the request.
type Pipeline struct {
	repo        repository.Repository
	codec       *token.Codec
	revocations revocation.List
	metrics     *metrics.Collector
	logger      *logger.Logger
}

func NewPipeline(repo repository.Repository, codec *token.Codec, revocations revocation.List, m *metrics.Collector, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		repo:        repo,
		codec:       codec,
		revocations: revocations,
		metrics:     m,
		logger:      log,
	}
}

// BearerToken extracts the credentials of an "Authorization: Bearer" header
func BearerToken(header string) string {
	scheme, credentials, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(credentials)
}

// Authenticate runs every stage in order and stops at the first failure.
// The holder attached to ctx is bound to the user's tenant on success and
// left untouched otherwise.
func (p *Pipeline) Authenticate(ctx context.Context, header string) (*domain.Principal, error) {
	raw := BearerToken(header)
	if raw == "" {
		return nil, p.reject(ctx, StageTokenPresented, ReasonMissingToken, nil)
	}

	claims, err := p.codec.Decode(raw)
	if err != nil {
		return nil, p.reject(ctx, StageTokenDecoded, ReasonInvalidToken, err)
	}

	if p.revocations.IsBlacklisted(ctx, claims.ID) {
		return nil, p.reject(ctx, StageRevocationChecked, ReasonRevoked, ErrTokenRevoked)
	}

	// no tenant is bound yet, so the lookup has to bypass the filter
	user, err := p.repo.User().GetByID(tenancy.Unscoped(ctx), claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, p.reject(ctx, StageUserResolved, ReasonInactiveOrMissing, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user.TenantID != claims.TenantID {
		return nil, p.reject(ctx, StageUserResolved, ReasonInvalidToken, ErrTenantMismatch)
	}
	if !user.CanAuthenticate() {
		return nil, p.reject(ctx, StageTenantBound, ReasonInactiveOrMissing, ErrInactiveAccount)
	}

	tenancy.FromContext(ctx).SetCurrent(user.Tenant)

	return &domain.Principal{
		User:      user,
		Tenant:    user.Tenant,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAtTime(),
	}, nil
}

func (p *Pipeline) reject(ctx context.Context, stage Stage, reason RejectReason, err error) error {
	p.metrics.RecordPipelineRejection(string(reason))

	log := logger.FromContext(ctx, p.logger)
	fields := []zap.Field{zap.String("stage", string(stage)), zap.String("reason", string(reason))}
	switch reason {
	case ReasonMissingToken:
		log.Info("request without bearer token", fields...)
	case ReasonRevoked:
		log.Warn("revoked token presented", fields...)
	default:
		log.Warn("authentication rejected", append(fields, zap.Error(err))...)
	}

	return &RejectedError{Stage: stage, Reason: reason, Err: err}
}
