package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to the bound tenant
	ErrNotFound = errors.New("record not found")
	// ErrRefreshTokenConsumed is returned by Rotate when the old token was already used, revoked or expired
	ErrRefreshTokenConsumed = errors.New("refresh token already consumed")
	ErrDuplicate            = errors.New("duplicate record")
)

//go:generate mockery --name TenantRepository --output ../mocks
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
	SubdomainExists(ctx context.Context, subdomain string) (bool, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
	ListOperational(ctx context.Context) ([]domain.Tenant, error)
}

// UserRepository operations are constrained to the tenant bound in ctx
//
//go:generate mockery --name UserRepository --output ../mocks
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// GetByID preloads the user's tenant
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindAllByEmail returns every visible user with email, tenants preloaded
	FindAllByEmail(ctx context.Context, email string) ([]domain.User, error)
	EmailExists(ctx context.Context, email string, excludeID string) (bool, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// RefreshTokenRepository stores refresh tokens by the digest of their value
//
//go:generate mockery --name RefreshTokenRepository --output ../mocks
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	// FindValidByHash returns nil, nil when no unrevoked, unexpired token has hash
	FindValidByHash(ctx context.Context, hash string, now time.Time) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
	// Rotate revokes oldID and stores next in one transaction. It returns
	// ErrRefreshTokenConsumed and stores nothing when oldID is no longer valid.
	Rotate(ctx context.Context, oldID string, next *domain.RefreshToken, now time.Time) error
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]domain.RefreshToken, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

//go:generate mockery --name ClientRepository --output ../mocks
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, limit, offset int) ([]domain.Client, int64, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) error
}

//go:generate mockery --name LocationRepository --output ../mocks
type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) error
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Location, error)
	Delete(ctx context.Context, id string) error
}

// SecurityEventRepository stores security events in per-tenant daily indices
//
//go:generate mockery --name SecurityEventRepository --output ../mocks
type SecurityEventRepository interface {
	Index(ctx context.Context, event *domain.SecurityEvent) error
	BulkIndex(ctx context.Context, events []domain.SecurityEvent) error
	Search(ctx context.Context, filter domain.SecurityEventFilter) ([]domain.SecurityEvent, error)
	CreateIndex(ctx context.Context, tenantID string, t time.Time) error
}

//go:generate mockery --name PostgresRepository --output ../mocks
type PostgresRepository interface {
	Tenant() TenantRepository
	User() UserRepository
	RefreshToken() RefreshTokenRepository
	Client() ClientRepository
	Location() LocationRepository
}

//go:generate mockery --name Repository --output ../mocks
type Repository interface {
	PostgresRepository
	SecurityEvents() SecurityEventRepository
}
