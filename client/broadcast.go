package client

import (
	"context"
	"sync"
)

// Broadcaster fans logout events out to every session attached to the same
// channel, so one session ending logs out its siblings (the cross-tab case).
type Broadcaster interface {
	// PublishLogout notifies all subscribers, including ones in other
	// processes for distributed implementations.
	PublishLogout(ctx context.Context) error
	// SubscribeLogout registers fn to run on every logout event and
	// returns an unsubscribe func.
	SubscribeLogout(fn func()) (unsubscribe func())
}

// MemoryBroadcaster delivers events to subscribers within the same process.
type MemoryBroadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func NewMemoryBroadcaster() *MemoryBroadcaster {
	return &MemoryBroadcaster{subs: make(map[int]func())}
}

func (b *MemoryBroadcaster) PublishLogout(ctx context.Context) error {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (b *MemoryBroadcaster) SubscribeLogout(fn func()) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}
