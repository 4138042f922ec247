package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kingrain94/tenant-auth-api/pkg/logger"
)

const (
	revocationChannel = "jwt_revocations"
)

type RevocationOp string

const (
	OpBlacklist RevocationOp = "blacklist"
	OpRemove    RevocationOp = "remove"
)

// Revocation announces a blacklisted or released access token to every API
// instance. An empty Op is a blacklist, as sent by older instances.
type Revocation struct {
	Op        RevocationOp `json:"op,omitempty"`
	JTI       string       `json:"jti"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type RedisPubSub struct {
	client       *redis.Client
	logger       *logger.Logger
	subscriber   *redis.PubSub
	subscriberMu sync.Mutex
}

func NewRedisPubSub(client *redis.Client, logger *logger.Logger) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		logger: logger,
	}
}

// Publish announces rev on the revocation channel
func (ps *RedisPubSub) Publish(ctx context.Context, rev Revocation) error {
	message, err := json.Marshal(rev)
	if err != nil {
		return fmt.Errorf("failed to marshal revocation: %w", err)
	}

	if err := ps.client.Publish(ctx, revocationChannel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", revocationChannel, err)
	}

	return nil
}

// Subscribe delivers every announced revocation to callback until ctx is done
func (ps *RedisPubSub) Subscribe(ctx context.Context, callback func(Revocation)) error {
	ps.subscriberMu.Lock()
	if ps.subscriber != nil {
		ps.subscriberMu.Unlock()
		ps.logger.Infof("Already subscribed to channel: %s", revocationChannel)
		return nil
	}
	pubsub := ps.client.Subscribe(ctx, revocationChannel)
	ps.subscriber = pubsub
	ps.subscriberMu.Unlock()

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", revocationChannel, err)
	}

	go func() {
		defer func() {
			ps.logger.Infof("Closing subscription for channel: %s", revocationChannel)
			ps.Close()
		}()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				rev, err := decodeRevocation(msg.Payload)
				if err != nil {
					ps.logger.Errorf("Failed to decode revocation from channel %s: %v", revocationChannel, err)
					continue
				}
				callback(rev)

			case <-ctx.Done():
				return
			}
		}
	}()

	ps.logger.Infof("Subscribed to channel: %s", revocationChannel)
	return nil
}

func (ps *RedisPubSub) Close() {
	ps.subscriberMu.Lock()
	defer ps.subscriberMu.Unlock()

	if ps.subscriber != nil {
		_ = ps.subscriber.Close()
		ps.subscriber = nil
	}
}

func decodeRevocation(payload string) (Revocation, error) {
	var rev Revocation
	if err := json.Unmarshal([]byte(payload), &rev); err != nil {
		return Revocation{}, err
	}
	if rev.JTI == "" {
		return Revocation{}, fmt.Errorf("revocation without jti")
	}
	switch rev.Op {
	case "":
		rev.Op = OpBlacklist
	case OpBlacklist, OpRemove:
	default:
		return Revocation{}, fmt.Errorf("unknown revocation op %q", rev.Op)
	}
	return rev, nil
}
