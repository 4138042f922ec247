package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/mocks"
	"github.com/kingrain94/tenant-auth-api/internal/service"
	"github.com/kingrain94/tenant-auth-api/internal/token"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

const testSecret = "authctl-test-secret"

type AuthctlTestSuite struct {
	suite.Suite
	mockRepo    *mocks.Repository
	mockTenant  *mocks.TenantRepository
	mockUser    *mocks.UserRepository
	mockRefresh *mocks.RefreshTokenRepository
	out         *bytes.Buffer
	app         *app
	tenant      *domain.Tenant
}

func (s *AuthctlTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockTenant = new(mocks.TenantRepository)
	s.mockUser = new(mocks.UserRepository)
	s.mockRefresh = new(mocks.RefreshTokenRepository)
	s.mockRepo.On("Tenant").Return(s.mockTenant)
	s.mockRepo.On("User").Return(s.mockUser)
	s.mockRepo.On("RefreshToken").Return(s.mockRefresh)

	s.out = new(bytes.Buffer)
	s.app = &app{
		cfg: &config.Config{
			JWTSecretKey:    testSecret,
			JWTIssuer:       "tenant-auth-api",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
			BcryptCost:      4,
		},
		repo: s.mockRepo,
		log:  logger.NewNop(),
		out:  s.out,
	}
	s.tenant = &domain.Tenant{ID: "tenant-1", Name: "Acme", Subdomain: "acme", Status: domain.TenantStatusActive}
}

func TestAuthctl(t *testing.T) {
	suite.Run(t, new(AuthctlTestSuite))
}

func (s *AuthctlTestSuite) run(args ...string) error {
	root := newRootCommand(s.app)
	root.SetArgs(args)
	root.SetErr(io.Discard)
	return root.Execute()
}

func (s *AuthctlTestSuite) TestTenantCreate_JSON() {
	// Arrange
	s.mockTenant.On("SubdomainExists", mock.Anything, "acme").Return(false, nil)
	s.mockTenant.On("Create", mock.Anything, mock.AnythingOfType("*domain.Tenant")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Tenant).ID = "tenant-9"
	})

	// Act
	err := s.run("tenant", "create", "--name", "Acme", "--subdomain", "ACME", "--out", "json")

	// Assert
	s.Require().NoError(err)
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &resp))
	s.Equal("tenant-9", resp["id"])
	s.Equal("acme", resp["subdomain"])
	s.Equal("trial", resp["status"])
}

func (s *AuthctlTestSuite) TestTenantCreate_Taken() {
	// Arrange
	s.mockTenant.On("SubdomainExists", mock.Anything, "acme").Return(true, nil)

	// Act
	err := s.run("tenant", "create", "--name", "Acme", "--subdomain", "acme")

	// Assert
	s.ErrorIs(err, service.ErrTenantExists)
	s.mockTenant.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *AuthctlTestSuite) TestTenantStatus_Text() {
	// Arrange
	s.mockTenant.On("GetBySubdomain", mock.Anything, "acme").Return(s.tenant, nil)
	s.mockTenant.On("Update", mock.Anything, mock.AnythingOfType("*domain.Tenant")).Return(nil)

	// Act
	err := s.run("tenant", "status", "--subdomain", "acme", "--status", "suspended")

	// Assert
	s.Require().NoError(err)
	s.Equal("tenant-1\tacme\tsuspended\tAcme\n", s.out.String())
}

func (s *AuthctlTestSuite) TestTokenIssue_SignsForTenantUser() {
	// Arrange
	user := domain.NewUser(s.tenant.ID, "ops@acme.test", "Op", "Erator", "hash", nil, time.Now())
	user.ID = "user-1"
	user.Tenant = s.tenant
	s.mockTenant.On("GetBySubdomain", mock.Anything, "acme").Return(s.tenant, nil)
	s.mockUser.On("FindByEmail", mock.Anything, "ops@acme.test").Return(user, nil)

	// Act
	err := s.run("token", "issue", "--subdomain", "acme", "--email", "ops@acme.test", "--out", "json")

	// Assert
	s.Require().NoError(err)
	var resp issuedTokens
	s.Require().NoError(json.Unmarshal(s.out.Bytes(), &resp))
	s.Empty(resp.RefreshToken)

	codec, err := token.NewCodec(token.Config{Secret: []byte(testSecret), Issuer: "tenant-auth-api"})
	s.Require().NoError(err)
	claims, err := codec.Decode(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal("tenant-1", claims.TenantID)
	s.Equal("user-1", claims.Subject)
}

func (s *AuthctlTestSuite) TestTokenIssue_InactiveUser() {
	// Arrange
	user := domain.NewUser(s.tenant.ID, "ops@acme.test", "Op", "Erator", "hash", nil, time.Now())
	user.ID = "user-1"
	user.Active = false
	user.Tenant = s.tenant
	s.mockTenant.On("GetBySubdomain", mock.Anything, "acme").Return(s.tenant, nil)
	s.mockUser.On("FindByEmail", mock.Anything, "ops@acme.test").Return(user, nil)

	// Act
	err := s.run("token", "issue", "--subdomain", "acme", "--email", "ops@acme.test")

	// Assert
	s.ErrorIs(err, service.ErrInactiveAccount)
	s.Empty(s.out.String())
}

func (s *AuthctlTestSuite) TestTokensRevokeAll() {
	// Arrange
	user := domain.NewUser(s.tenant.ID, "ops@acme.test", "Op", "Erator", "hash", nil, time.Now())
	user.ID = "user-1"
	s.mockTenant.On("GetBySubdomain", mock.Anything, "acme").Return(s.tenant, nil)
	s.mockUser.On("FindByEmail", mock.Anything, "ops@acme.test").Return(user, nil)
	s.mockRefresh.On("RevokeAllForUser", mock.Anything, "user-1").Return(int64(3), nil)

	// Act
	err := s.run("tokens", "revoke-all", "--subdomain", "acme", "--email", "ops@acme.test")

	// Assert
	s.Require().NoError(err)
	s.True(strings.HasPrefix(s.out.String(), "revoked 3 refresh token(s)"))
}

func (s *AuthctlTestSuite) TestTokensPurge() {
	// Arrange
	s.mockRefresh.On("ListExpired", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).
		Return([]domain.RefreshToken{}, nil)

	// Act
	err := s.run("tokens", "purge", "--out", "json")

	// Assert
	s.Require().NoError(err)
	s.JSONEq(`{"purged":0}`, s.out.String())
}

func (s *AuthctlTestSuite) TestRejectsUnknownOutputFormat() {
	err := s.run("tenant", "list", "--out", "yaml")
	s.ErrorContains(err, "--out must be text or json")
}
