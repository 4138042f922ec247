package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/internal/mocks"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/revocation"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
	"github.com/kingrain94/tenant-auth-api/internal/token"
)

type PipelineTestSuite struct {
	suite.Suite
	mockRepo    *mocks.Repository
	mockUser    *mocks.UserRepository
	codec       *token.Codec
	revocations *revocation.MemoryList
	registry    *prometheus.Registry
	pipeline    *Pipeline

	tenant *domain.Tenant
	user   *domain.User
}

func (s *PipelineTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockUser = new(mocks.UserRepository)
	s.mockRepo.On("User").Return(s.mockUser)

	codec, err := token.NewCodec(token.Config{Secret: []byte("pipeline-secret")})
	s.Require().NoError(err)
	s.codec = codec
	s.revocations = revocation.NewMemoryList()
	s.registry = prometheus.NewRegistry()
	s.pipeline = NewPipeline(s.mockRepo, codec, s.revocations, metrics.NewCollector(s.registry), nil)

	s.tenant = testTenant("tenant-1")
	s.user = testUser("user-1", s.tenant)
}

func TestPipeline(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (s *PipelineTestSuite) bearer() (string, *token.Claims) {
	issued, err := s.codec.Issue(s.user)
	s.Require().NoError(err)
	return "Bearer " + issued.Token, issued.Claims
}

func (s *PipelineTestSuite) assertRejected(err error, stage Stage, reason RejectReason) {
	var rejected *RejectedError
	s.Require().True(errors.As(err, &rejected), "expected RejectedError, got %v", err)
	s.Equal(stage, rejected.Stage)
	s.Equal(reason, rejected.Reason)
}

func (s *PipelineTestSuite) TestAuthenticate_BindsTenant() {
	// Arrange
	header, claims := s.bearer()
	holder := tenancy.New()
	ctx := tenancy.WithContext(context.Background(), holder)
	s.mockUser.On("GetByID", unscoped(), "user-1").Return(s.user, nil)

	// Act
	principal, err := s.pipeline.Authenticate(ctx, header)

	// Assert
	s.Require().NoError(err)
	s.Equal("user-1", principal.UserID())
	s.Equal("tenant-1", principal.TenantID())
	s.Equal(claims.ID, principal.TokenID)
	s.True(claims.ExpiresAtTime().Equal(principal.ExpiresAt))
	s.Equal("tenant-1", holder.CurrentID())
}

func (s *PipelineTestSuite) TestAuthenticate_MissingToken() {
	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer ", "Bearer"} {
		_, err := s.pipeline.Authenticate(context.Background(), header)
		s.assertRejected(err, StageTokenPresented, ReasonMissingToken)
	}
}

func (s *PipelineTestSuite) TestAuthenticate_InvalidToken() {
	// Arrange
	other, err := token.NewCodec(token.Config{Secret: []byte("other-secret")})
	s.Require().NoError(err)
	forged, err := other.Issue(s.user)
	s.Require().NoError(err)

	// Act
	_, err = s.pipeline.Authenticate(context.Background(), "Bearer "+forged.Token)

	// Assert
	s.assertRejected(err, StageTokenDecoded, ReasonInvalidToken)
	s.ErrorIs(err, token.ErrInvalidToken)
	s.mockUser.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
}

func (s *PipelineTestSuite) TestAuthenticate_ExpiredToken() {
	// Arrange
	past, err := token.NewCodec(token.Config{Secret: []byte("pipeline-secret")},
		token.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }))
	s.Require().NoError(err)
	expired, err := past.Issue(s.user)
	s.Require().NoError(err)

	// Act
	_, err = s.pipeline.Authenticate(context.Background(), "Bearer "+expired.Token)

	// Assert
	s.assertRejected(err, StageTokenDecoded, ReasonInvalidToken)
	s.ErrorIs(err, token.ErrInvalidToken)
	s.Contains(err.Error(), "expired")
}

func (s *PipelineTestSuite) TestAuthenticate_RevokedToken() {
	// Arrange
	header, claims := s.bearer()
	s.Require().NoError(s.revocations.Blacklist(context.Background(), claims.ID, claims.ExpiresAtTime()))
	holder := tenancy.New()
	ctx := tenancy.WithContext(context.Background(), holder)

	// Act
	_, err := s.pipeline.Authenticate(ctx, header)

	// Assert
	s.assertRejected(err, StageRevocationChecked, ReasonRevoked)
	s.False(holder.HasCurrent())
	s.mockUser.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
}

func (s *PipelineTestSuite) TestAuthenticate_UserMissing() {
	// Arrange
	header, _ := s.bearer()
	s.mockUser.On("GetByID", mock.Anything, "user-1").Return(nil, repository.ErrNotFound)

	// Act
	_, err := s.pipeline.Authenticate(context.Background(), header)

	// Assert
	s.assertRejected(err, StageUserResolved, ReasonInactiveOrMissing)
}

func (s *PipelineTestSuite) TestAuthenticate_InactiveUserOrTenant() {
	// Arrange
	header, _ := s.bearer()
	s.tenant.Suspend(time.Now())
	s.mockUser.On("GetByID", mock.Anything, "user-1").Return(s.user, nil)
	holder := tenancy.New()

	// Act
	_, err := s.pipeline.Authenticate(tenancy.WithContext(context.Background(), holder), header)

	// Assert
	s.assertRejected(err, StageTenantBound, ReasonInactiveOrMissing)
	s.False(holder.HasCurrent())
}

func (s *PipelineTestSuite) TestAuthenticate_TokenTenantMismatch() {
	// Arrange
	header, _ := s.bearer()
	moved := *s.user
	moved.TenantID = "tenant-2"
	moved.Tenant = testTenant("tenant-2")
	s.mockUser.On("GetByID", mock.Anything, "user-1").Return(&moved, nil)

	// Act
	_, err := s.pipeline.Authenticate(context.Background(), header)

	// Assert
	s.assertRejected(err, StageUserResolved, ReasonInvalidToken)
}

func (s *PipelineTestSuite) TestAuthenticate_BackendErrorIsNotARejection() {
	// Arrange
	header, _ := s.bearer()
	s.mockUser.On("GetByID", mock.Anything, "user-1").Return(nil, assertErr)

	// Act
	_, err := s.pipeline.Authenticate(context.Background(), header)

	// Assert
	var rejected *RejectedError
	s.False(errors.As(err, &rejected))
	s.ErrorIs(err, assertErr)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer   abc "))
	assert.Equal(t, "", BearerToken("Token abc"))
	assert.Equal(t, "", BearerToken("abc"))
}
