// Package revocation keeps the blacklist of access token ids invalidated before expiry.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/metrics"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

const (
	KeyPrefix = "jwt_blacklist_"

	BackendRedis  = "redis"
	BackendMemory = "memory"

	DefaultLookupTimeout = 250 * time.Millisecond
)

// Key is the storage key of a blacklisted jti
func Key(jti string) string {
	return KeyPrefix + jti
}

// List records revoked access tokens until they would have expired anyway
type List interface {
	// Blacklist stores jti until expiresAt. A token that already expired is not stored.
	Blacklist(ctx context.Context, jti string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) bool
	Remove(ctx context.Context, jti string) error
}

// FailurePolicy decides what IsBlacklisted reports when the backend cannot answer
type FailurePolicy int

const (
	// FailOpen treats the token as not revoked
	FailOpen FailurePolicy = iota
	// FailClosed treats the token as revoked
	FailClosed
)

func (p FailurePolicy) String() string {
	if p == FailClosed {
		return "fail_closed"
	}
	return "fail_open"
}

type options struct {
	logger  *logger.Logger
	metrics *metrics.Collector
	timeout time.Duration
	policy  FailurePolicy
	now     func() time.Time
}

type Option func(*options)

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}

// WithTimeout bounds each backend lookup
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *options) { o.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:  logger.NewNop(),
		timeout: DefaultLookupTimeout,
		policy:  FailOpen,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds the backend selected by cfg. The redis client is only required
// for the redis backend.
func New(cfg config.RevocationConfig, client redis.Cmdable, opts ...Option) (List, error) {
	if cfg.LookupTimeout > 0 {
		opts = append([]Option{WithTimeout(cfg.LookupTimeout)}, opts...)
	}
	if cfg.FailClosed {
		opts = append([]Option{WithFailurePolicy(FailClosed)}, opts...)
	}

	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryList(opts...), nil
	case BackendRedis, "":
		if client == nil {
			return nil, fmt.Errorf("revocation backend %q requires a redis client", BackendRedis)
		}
		return NewRedisList(client, opts...), nil
	default:
		return nil, fmt.Errorf("unknown revocation backend %q", cfg.Backend)
	}
}
