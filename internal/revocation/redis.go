package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type RedisList struct {
	client redis.Cmdable
	group  singleflight.Group
	opts   options
}

func NewRedisList(client redis.Cmdable, opts ...Option) *RedisList {
	return &RedisList{
		client: client,
		opts:   buildOptions(opts),
	}
}

func (l *RedisList) Blacklist(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.opts.now())
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, Key(jti), 1, ttl).Err()
}

// IsBlacklisted collapses concurrent lookups of the same jti into one EXISTS
// call bounded by the lookup timeout. Backend errors are resolved by the
// failure policy.
func (l *RedisList) IsBlacklisted(ctx context.Context, jti string) bool {
	v, err, _ := l.group.Do(jti, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.timeout)
		defer cancel()
		n, err := l.client.Exists(lookupCtx, Key(jti)).Result()
		if err != nil {
			return false, err
		}
		return n > 0, nil
	})
	if err != nil {
		l.opts.metrics.RecordRevocationLookup("error")
		l.opts.logger.Warn("Revocation lookup failed",
			zap.Error(err),
			zap.String("policy", l.opts.policy.String()))
		return l.opts.policy == FailClosed
	}

	revoked := v.(bool)
	if revoked {
		l.opts.metrics.RecordRevocationLookup("hit")
	} else {
		l.opts.metrics.RecordRevocationLookup("miss")
	}
	return revoked
}

func (l *RedisList) Remove(ctx context.Context, jti string) error {
	return l.client.Del(ctx, Key(jti)).Err()
}
