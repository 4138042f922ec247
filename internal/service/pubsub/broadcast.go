package pubsub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-auth-api/internal/revocation"
	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, rev Revocation) error
}

// BroadcastList keeps a process-local blacklist in sync across instances.
// Local writes are announced; announcements from other instances are applied
// through Apply.
type BroadcastList struct {
	local     revocation.List
	publisher Publisher
	logger    *logger.Logger
}

func NewBroadcastList(local revocation.List, publisher Publisher, log *logger.Logger) *BroadcastList {
	if log == nil {
		log = logger.NewNop()
	}
	return &BroadcastList{local: local, publisher: publisher, logger: log}
}

// Blacklist records jti locally before announcing it. A failed announcement
// is returned but the local entry stays.
func (l *BroadcastList) Blacklist(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := l.local.Blacklist(ctx, jti, expiresAt); err != nil {
		return err
	}
	return l.publisher.Publish(ctx, Revocation{Op: OpBlacklist, JTI: jti, ExpiresAt: expiresAt})
}

func (l *BroadcastList) IsBlacklisted(ctx context.Context, jti string) bool {
	return l.local.IsBlacklisted(ctx, jti)
}

// Remove drops jti locally, then tells the other instances to drop it too.
func (l *BroadcastList) Remove(ctx context.Context, jti string) error {
	if err := l.local.Remove(ctx, jti); err != nil {
		return err
	}
	return l.publisher.Publish(ctx, Revocation{Op: OpRemove, JTI: jti})
}

// Apply replays an announcement from any instance, this one included
func (l *BroadcastList) Apply(rev Revocation) {
	var err error
	if rev.Op == OpRemove {
		err = l.local.Remove(context.Background(), rev.JTI)
	} else {
		err = l.local.Blacklist(context.Background(), rev.JTI, rev.ExpiresAt)
	}
	if err != nil {
		l.logger.Warn("failed to apply broadcast revocation",
			zap.String("op", string(rev.Op)), zap.Error(err))
	}
}
