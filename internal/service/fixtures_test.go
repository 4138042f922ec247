package service

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/password"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
)

const testPassword = "correct-horse"

var testHasher = password.NewHasher(bcrypt.MinCost)

func testTenant(id string) *domain.Tenant {
	return &domain.Tenant{ID: id, Name: "Tenant " + id, Subdomain: "sub-" + id, Status: domain.TenantStatusActive, RateLimit: 1000}
}

func testUser(id string, tenant *domain.Tenant, roles ...domain.Role) *domain.User {
	hash, err := testHasher.Hash(testPassword)
	if err != nil {
		panic(err)
	}
	user := domain.NewUser(tenant.ID, id+"@example.com", "Test", "User", hash, roles, time.Now())
	user.ID = id
	user.Tenant = tenant
	return user
}

func principalFor(user *domain.User) *domain.Principal {
	return &domain.Principal{
		User:      user,
		Tenant:    user.Tenant,
		TokenID:   "jti-" + user.ID,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
}

// boundTo matches a context bound to tenantID
func boundTo(tenantID string) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		id, ok := tenancy.TenantID(ctx)
		return ok && id == tenantID
	})
}

// unscoped matches a context that bypasses the tenant filter
func unscoped() interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		return tenancy.IsUnscoped(ctx)
	})
}

var assertErr = errors.New("backend unavailable")
