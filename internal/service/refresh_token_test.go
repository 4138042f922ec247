package service

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/mocks"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
)

type RefreshTokenServiceTestSuite struct {
	suite.Suite
	mockRepo    *mocks.Repository
	mockRefresh *mocks.RefreshTokenRepository
	service     *RefreshTokenService
	now         time.Time
}

func (s *RefreshTokenServiceTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockRefresh = new(mocks.RefreshTokenRepository)
	s.mockRepo.On("RefreshToken").Return(s.mockRefresh)

	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.service = NewRefreshTokenService(s.mockRepo, 0)
	s.service.now = func() time.Time { return s.now }
}

func TestRefreshTokenService(t *testing.T) {
	suite.Run(t, new(RefreshTokenServiceTestSuite))
}

func (s *RefreshTokenServiceTestSuite) TestCreate() {
	// Arrange
	ctx := context.Background()
	user := &domain.User{ID: "user-1"}
	s.mockRefresh.On("Create", ctx, mock.AnythingOfType("*domain.RefreshToken")).Return(nil)

	// Act
	issued, err := s.service.Create(ctx, user)

	// Assert
	s.Require().NoError(err)
	s.Len(issued.Plain, 128)
	_, decodeErr := hex.DecodeString(issued.Plain)
	s.NoError(decodeErr)
	s.Equal(HashRefreshToken(issued.Plain), issued.Token.Token)
	s.Equal("user-1", issued.Token.UserID)
	s.Equal(s.now.Add(7*24*time.Hour), issued.Token.ValidUntil)
	s.False(issued.Token.IsRevoked)
	s.mockRefresh.AssertExpectations(s.T())
}

func (s *RefreshTokenServiceTestSuite) TestCreate_TokensAreUnique() {
	// Arrange
	s.mockRefresh.On("Create", mock.Anything, mock.Anything).Return(nil)
	seen := map[string]bool{}

	// Act & Assert
	for i := 0; i < 20; i++ {
		issued, err := s.service.Create(context.Background(), &domain.User{ID: "user-1"})
		s.Require().NoError(err)
		s.False(seen[issued.Plain])
		seen[issued.Plain] = true
	}
}

func (s *RefreshTokenServiceTestSuite) TestFindValid_AbsentRevokedExpiredAllNil() {
	// Arrange
	ctx := context.Background()
	expired := domain.NewRefreshToken("user-1", HashRefreshToken("expired"), s.now.Add(-8*24*time.Hour), 0)
	revoked := domain.NewRefreshToken("user-1", HashRefreshToken("revoked"), s.now, 0)
	revoked.Revoke()
	s.mockRefresh.On("FindValidByHash", ctx, HashRefreshToken("absent"), s.now).Return(nil, nil)
	s.mockRefresh.On("FindValidByHash", ctx, HashRefreshToken("expired"), s.now).Return(expired, nil)
	s.mockRefresh.On("FindValidByHash", ctx, HashRefreshToken("revoked"), s.now).Return(revoked, nil)

	// Act & Assert
	for _, plain := range []string{"", "absent", "expired", "revoked"} {
		token, err := s.service.FindValid(ctx, plain)
		s.NoError(err, plain)
		s.Nil(token, plain)
	}
}

func (s *RefreshTokenServiceTestSuite) TestFindValid_Valid() {
	// Arrange
	ctx := context.Background()
	valid := domain.NewRefreshToken("user-1", HashRefreshToken("plain"), s.now, 0)
	s.mockRefresh.On("FindValidByHash", ctx, HashRefreshToken("plain"), s.now).Return(valid, nil)

	// Act
	token, err := s.service.FindValid(ctx, "plain")

	// Assert
	s.NoError(err)
	s.Same(valid, token)
}

func (s *RefreshTokenServiceTestSuite) TestRevoke_IsIdempotent() {
	// Arrange
	ctx := context.Background()
	token := domain.NewRefreshToken("user-1", "digest", s.now, 0)
	token.ID = "rt-1"
	s.mockRefresh.On("Revoke", ctx, "rt-1").Return(nil).Once()

	// Act
	first := s.service.Revoke(ctx, token)
	second := s.service.Revoke(ctx, token)

	// Assert
	s.NoError(first)
	s.NoError(second)
	s.True(token.IsRevoked)
	s.mockRefresh.AssertNumberOfCalls(s.T(), "Revoke", 1)
}

func (s *RefreshTokenServiceTestSuite) TestRotate_Consumed() {
	// Arrange
	ctx := context.Background()
	old := domain.NewRefreshToken("user-1", "digest", s.now, 0)
	old.ID = "rt-1"
	s.mockRefresh.On("Rotate", ctx, "rt-1", mock.AnythingOfType("*domain.RefreshToken"), s.now).Return(repository.ErrRefreshTokenConsumed)

	// Act
	next, err := s.service.Rotate(ctx, old, &domain.User{ID: "user-1"})

	// Assert
	s.ErrorIs(err, repository.ErrRefreshTokenConsumed)
	s.Nil(next)
	s.False(old.IsRevoked)
}

func (s *RefreshTokenServiceTestSuite) TestRevokeAllAndDeleteExpired() {
	// Arrange
	ctx := context.Background()
	s.mockRefresh.On("RevokeAllForUser", ctx, "user-1").Return(int64(3), nil)
	s.mockRefresh.On("DeleteExpired", ctx, s.now).Return(int64(5), nil)

	// Act
	revoked, revokeErr := s.service.RevokeAll(ctx, "user-1")
	deleted, deleteErr := s.service.DeleteExpired(ctx)

	// Assert
	s.NoError(revokeErr)
	s.NoError(deleteErr)
	s.Equal(int64(3), revoked)
	s.Equal(int64(5), deleted)
}

func TestHashRefreshToken(t *testing.T) {
	assert.Equal(t, "2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae", HashRefreshToken("foo"))
	assert.Len(t, HashRefreshToken("anything"), 64)
}
