package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
)

const refreshTokenBytes = 64

// IssuedRefreshToken pairs the stored row with the plaintext handed to the client
type IssuedRefreshToken struct {
	Plain string
	Token *domain.RefreshToken
}

type RefreshTokenService struct {
	repo repository.Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewRefreshTokenService(repo repository.Repository, ttl time.Duration) *RefreshTokenService {
	if ttl <= 0 {
		ttl = domain.RefreshTokenTTL
	}
	return &RefreshTokenService{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// HashRefreshToken is the digest stored in place of the plaintext
func HashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func generateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *RefreshTokenService) newToken(userID string) (*IssuedRefreshToken, error) {
	plain, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	return &IssuedRefreshToken{
		Plain: plain,
		Token: domain.NewRefreshToken(userID, HashRefreshToken(plain), s.now(), s.ttl),
	}, nil
}

func (s *RefreshTokenService) Create(ctx context.Context, user *domain.User) (*IssuedRefreshToken, error) {
	issued, err := s.newToken(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RefreshToken().Create(ctx, issued.Token); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return issued, nil
}

// FindValid returns nil, nil for unknown, revoked and expired tokens alike
func (s *RefreshTokenService) FindValid(ctx context.Context, plain string) (*domain.RefreshToken, error) {
	if plain == "" {
		return nil, nil
	}
	token, err := s.repo.RefreshToken().FindValidByHash(ctx, HashRefreshToken(plain), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if token == nil || !token.IsValid(s.now()) {
		return nil, nil
	}
	return token, nil
}

func (s *RefreshTokenService) Revoke(ctx context.Context, token *domain.RefreshToken) error {
	if token.IsRevoked {
		return nil
	}
	if err := s.repo.RefreshToken().Revoke(ctx, token.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	token.Revoke()
	return nil
}

func (s *RefreshTokenService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.RefreshToken().RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return n, nil
}

// Rotate consumes old and stores its replacement atomically. Losing a race
// for old yields repository.ErrRefreshTokenConsumed.
func (s *RefreshTokenService) Rotate(ctx context.Context, old *domain.RefreshToken, user *domain.User) (*IssuedRefreshToken, error) {
	next, err := s.newToken(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RefreshToken().Rotate(ctx, old.ID, next.Token, s.now()); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	old.Revoke()
	return next, nil
}

func (s *RefreshTokenService) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.RefreshToken().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return n, nil
}
