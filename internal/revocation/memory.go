package revocation

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryList is a process-local blacklist for single-instance deployments
type MemoryList struct {
	c    *gocache.Cache
	opts options
}

func NewMemoryList(opts ...Option) *MemoryList {
	return &MemoryList{
		c:    gocache.New(gocache.NoExpiration, time.Minute),
		opts: buildOptions(opts),
	}
}

func (l *MemoryList) Blacklist(_ context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.opts.now())
	if ttl <= 0 {
		return nil
	}
	l.c.Set(Key(jti), struct{}{}, ttl)
	return nil
}

func (l *MemoryList) IsBlacklisted(_ context.Context, jti string) bool {
	_, ok := l.c.Get(Key(jti))
	if ok {
		l.opts.metrics.RecordRevocationLookup("hit")
	} else {
		l.opts.metrics.RecordRevocationLookup("miss")
	}
	return ok
}

func (l *MemoryList) Remove(_ context.Context, jti string) error {
	l.c.Delete(Key(jti))
	return nil
}

// Count returns the number of unexpired entries
func (l *MemoryList) Count() int {
	return len(l.c.Items())
}
