// Package broadcast fans freshly generated snapshots out to subscribers.
// Each subscriber owns a buffered channel; a full channel drops the
// snapshot for that subscriber so a slow consumer never blocks the
// publishing cycle or its peers.
package broadcast

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"cse-market-data/internal/model"
)

// DefaultBuffer is the per-subscriber channel capacity when the
// Broadcaster is built with a non-positive buffer size.
const DefaultBuffer = 8

// Subscription is one subscriber's handle. Receive on C; call
// Broadcaster.Unsubscribe with ID when done.
type Subscription struct {
	ID string
	C  <-chan *model.Snapshot
}

type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[string]chan *model.Snapshot
	last    *model.Snapshot
	bufSize int
	closed  bool

	// OnDrop is called with the subscriber ID whenever a snapshot is
	// dropped because that subscriber's channel is full.
	OnDrop func(id string)
}

func New(bufSize int) *Broadcaster {
	if bufSize <= 0 {
		bufSize = DefaultBuffer
	}
	return &Broadcaster{
		subs:    make(map[string]chan *model.Snapshot),
		bufSize: bufSize,
	}
}

// Subscribe registers a new subscriber. If a snapshot has already been
// published, it is delivered immediately so late joiners start with a
// full view. Returns a zero-value Subscription after Close.
func (b *Broadcaster) Subscribe() Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Subscription{}
	}
	ch := make(chan *model.Snapshot, b.bufSize)
	id := uuid.NewString()
	b.subs[id] = ch
	if b.last != nil {
		ch <- b.last
	}
	return Subscription{ID: id, C: ch}
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// more than once; unknown IDs are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
}

// Publish delivers snap to every subscriber without blocking. Subscribers
// whose channels are full miss this cycle.
func (b *Broadcaster) Publish(snap *model.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.last = snap
	for id, ch := range b.subs {
		select {
		case ch <- snap:
		default:
			if b.OnDrop != nil {
				b.OnDrop(id)
			} else {
				log.Printf("[broadcast] subscriber %s channel full, dropping snapshot", id)
			}
		}
	}
}

// Len reports the number of active subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel and rejects further subscriptions.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
