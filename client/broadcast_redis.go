package client

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/employee-portal/portal/backend/go-services/pkg/logger"
)

// logoutChannel is the pub/sub channel logout events travel on.
const logoutChannel = "portal:session:logout"

// RedisBroadcaster delivers logout events across processes over Redis
// pub/sub. Each subscriber holds its own connection; Close tears them down.
type RedisBroadcaster struct {
	client *redis.Client

	mu   sync.Mutex
	subs []*redis.PubSub
}

func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

func (b *RedisBroadcaster) PublishLogout(ctx context.Context) error {
	return b.client.Publish(ctx, logoutChannel, "logout").Err()
}

func (b *RedisBroadcaster) SubscribeLogout(fn func()) func() {
	ps := b.client.Subscribe(context.Background(), logoutChannel)

	b.mu.Lock()
	b.subs = append(b.subs, ps)
	b.mu.Unlock()

	go func() {
		for range ps.Channel() {
			fn()
		}
	}()

	return func() {
		if err := ps.Close(); err != nil {
			logger.Warnf("broadcast: failed to close subscription: %v", err)
		}
	}
}

// Close unsubscribes every remaining subscriber.
func (b *RedisBroadcaster) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, ps := range subs {
		_ = ps.Close()
	}
}
