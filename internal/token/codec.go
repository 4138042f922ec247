// Package token issues and verifies the HS256 access tokens handed out at login and refresh.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

const (
	DefaultTTL    = 15 * time.Minute
	DefaultIssuer = "tenant-auth-api"

	jtiBytes = 32
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("token signing secret is required")
)

// Claims is the access token payload
type Claims struct {
	TenantID string `json:"tenant_id"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks
func (c *Claims) Validate() error {
	if c.Subject == "" {
		return errors.New("sub claim is required")
	}
	if c.TenantID == "" {
		return errors.New("tenant_id claim is required")
	}
	if c.ID == "" {
		return errors.New("jti claim is required")
	}
	return nil
}

// ExpiresAtTime returns the exp claim, or the zero time when it is missing
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Issued is a signed access token together with the claims it carries
type Issued struct {
	Token  string
	Claims *Claims
}

type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now for issuing and validating tokens
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	c := &Codec{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a new access token for user with a fresh jti
func (c *Codec) Issue(user *domain.User) (*Issued, error) {
	if user == nil || user.ID == "" || user.TenantID == "" {
		return nil, errors.New("cannot issue token for user without id or tenant")
	}

	jti, err := NewJTI()
	if err != nil {
		return nil, err
	}

	now := c.now()
	claims := &Claims{
		TenantID: user.TenantID,
		FullName: user.FullName(),
		IsActive: user.Active,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        jti,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Issued{Token: signed, Claims: claims}, nil
}

// Decode verifies the signature, algorithm, issuer and expiry of raw.
// Every failure wraps ErrInvalidToken.
func (c *Codec) Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims, nil
}

// NewJTI returns 32 random bytes, hex encoded
func NewJTI() (string, error) {
	b := make([]byte, jtiBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
