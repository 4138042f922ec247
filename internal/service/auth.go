package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-auth-api/internal/api/dto"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/internal/password"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/revocation"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/internal/token"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

const tokenTypeBearer = "Bearer"

// AuthService implements login, refresh and logout
type AuthService struct {
	repo          repository.Repository
	codec         *token.Codec
	refreshTokens *RefreshTokenService
	revocations   revocation.List
	hasher        *password.Hasher
	events        *SecurityEventService
	metrics       *metrics.Collector
	logger        *logger.Logger
	now           func() time.Time
}

func NewAuthService(
	repo repository.Repository,
	codec *token.Codec,
	refreshTokens *RefreshTokenService,
	revocations revocation.List,
	hasher *password.Hasher,
	events *SecurityEventService,
	m *metrics.Collector,
	log *logger.Logger,
) *AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthService{
		repo:          repo,
		codec:         codec,
		refreshTokens: refreshTokens,
		revocations:   revocations,
		hasher:        hasher,
		events:        events,
		metrics:       m,
		logger:        log,
		now:           time.Now,
	}
}

// Login verifies credentials and issues a token pair. Unknown users and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, tenantID, err := s.findLoginUser(ctx, domain.NormalizeEmail(req.Email), req.Subdomain)
	if err != nil {
		return nil, err
	}

	if user == nil {
		s.hasher.Compare("", req.Password)
		s.metrics.RecordLogin("invalid_credentials")
		s.events.Record(ctx, domain.SecurityEventLoginFailed, tenantID, "", "unknown account")
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		s.metrics.RecordLogin("invalid_credentials")
		s.events.Record(ctx, domain.SecurityEventLoginFailed, user.TenantID, user.ID, "wrong password")
		return nil, ErrInvalidCredentials
	}
	if !user.CanAuthenticate() {
		s.metrics.RecordLogin("inactive")
		s.events.Record(ctx, domain.SecurityEventLoginFailed, user.TenantID, user.ID, "inactive account")
		return nil, ErrInactiveAccount
	}

	scoped := tenancy.WithTenant(ctx, user.Tenant)
	now := s.now()
	if err := s.repo.User().UpdateLastLogin(scoped, user.ID, now); err != nil {
		logger.FromContext(ctx, s.logger).Error("failed to record last login", err, zap.String("user_id", user.ID))
	} else {
		user.RecordLogin(now)
	}

	tokens, err := s.issueTokens(scoped, user)
	if err != nil {
		s.metrics.RecordLogin("error")
		return nil, err
	}

	s.metrics.RecordLogin("success")
	s.events.Record(ctx, domain.SecurityEventLogin, user.TenantID, user.ID, "login succeeded")

	return &dto.LoginResponse{
		TokenResponse: *tokens,
		User:          *dto.FromUser(user),
	}, nil
}

// findLoginUser returns nil without error when no single account matches.
// The returned tenant id is known whenever the subdomain resolved.
func (s *AuthService) findLoginUser(ctx context.Context, email, subdomain string) (*domain.User, string, error) {
	if subdomain != "" {
		tenant, err := s.repo.Tenant().GetBySubdomain(ctx, subdomain)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", nil
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to look up tenant: %w", err)
		}

		user, err := s.repo.User().FindByEmail(tenancy.WithTenant(ctx, tenant), email)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, tenant.ID, nil
		}
		if err != nil {
			return nil, tenant.ID, fmt.Errorf("failed to look up user: %w", err)
		}
		if user.Tenant == nil {
			user.Tenant = tenant
		}
		return user, tenant.ID, nil
	}

	users, err := s.repo.User().FindAllByEmail(tenancy.Unscoped(ctx), email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	switch len(users) {
	case 0:
		return nil, "", nil
	case 1:
		return &users[0], users[0].TenantID, nil
	default:
		logger.FromContext(ctx, s.logger).Info("login email matches several tenants, subdomain required",
			zap.Int("matches", len(users)))
		return nil, "", nil
	}
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	access, err := s.codec.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.refreshTokens.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.tokenResponse(access, refresh), nil
}

func (s *AuthService) tokenResponse(access *token.Issued, refresh *IssuedRefreshToken) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  access.Token,
		RefreshToken: refresh.Plain,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.codec.TTL().Seconds()),
	}
}

// Refresh exchanges a valid refresh token for a new pair. The presented token
// is consumed whether or not the caller ever receives the response.
func (s *AuthService) Refresh(ctx context.Context, plain string) (*dto.TokenResponse, error) {
	if plain == "" {
		return nil, ErrRefreshTokenRequired
	}

	old, err := s.refreshTokens.FindValid(ctx, plain)
	if err != nil {
		s.metrics.RecordRefresh("error")
		return nil, err
	}
	if old == nil {
		s.metrics.RecordRefresh("invalid")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.User().GetByID(tenancy.Unscoped(ctx), old.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.RecordRefresh("inactive")
		return nil, ErrInactiveAccount
	}
	if err != nil {
		s.metrics.RecordRefresh("error")
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CanAuthenticate() {
		s.metrics.RecordRefresh("inactive")
		s.events.Record(ctx, domain.SecurityEventRefreshRejected, user.TenantID, user.ID, "inactive account")
		return nil, ErrInactiveAccount
	}

	scoped := tenancy.WithTenant(ctx, user.Tenant)

	access, err := s.codec.Issue(user)
	if err != nil {
		s.metrics.RecordRefresh("error")
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	next, err := s.refreshTokens.Rotate(scoped, old, user)
	if errors.Is(err, repository.ErrRefreshTokenConsumed) {
		s.metrics.RecordRefresh("reused")
		s.events.Record(ctx, domain.SecurityEventRefreshRejected, user.TenantID, user.ID, "refresh token already used")
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		s.metrics.RecordRefresh("error")
		return nil, err
	}

	s.metrics.RecordRefresh("success")
	s.events.Record(ctx, domain.SecurityEventTokenRefreshed, user.TenantID, user.ID, "token refreshed")
	return s.tokenResponse(access, next), nil
}

// Logout blacklists the caller's access token and revokes refreshToken when
// it belongs to the caller. Failures are logged; logout itself always succeeds.
func (s *AuthService) Logout(ctx context.Context, principal *domain.Principal, refreshToken string) error {
	if principal == nil || principal.User == nil {
		return ErrNotAuthenticated
	}
	log := logger.FromContext(ctx, s.logger).With(zap.String("user_id", principal.UserID()))

	if principal.TokenID != "" {
		if err := s.revocations.Blacklist(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
			log.Error("failed to blacklist access token", err)
		}
	}

	if refreshToken != "" {
		s.revokeOwnRefreshToken(ctx, log, principal.User.ID, refreshToken)
	}

	s.metrics.RecordLogout()
	s.events.Record(ctx, domain.SecurityEventLogout, principal.TenantID(), principal.UserID(), "logged out")
	return nil
}

func (s *AuthService) revokeOwnRefreshToken(ctx context.Context, log *logger.Logger, userID, plain string) {
	stored, err := s.refreshTokens.FindValid(ctx, plain)
	if err != nil {
		log.Error("failed to look up refresh token at logout", err)
		return
	}
	if stored == nil {
		return
	}
	if stored.UserID != userID {
		log.Warn("refresh token of another user presented at logout")
		return
	}
	if err := s.refreshTokens.Revoke(ctx, stored); err != nil {
		log.Error("failed to revoke refresh token at logout", err)
	}
}
