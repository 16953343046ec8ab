// Package stream fans newly ingested alert events out to every connected
// live subscriber.
package stream

import (
	"log/slog"
	"sync"

	"github.com/opsglass/alertboard/internal/metrics"
)

// Subscriber is one live connection's view of the hub. Events arrive on C
// in the order they were published. The channel is closed when the
// subscriber is removed from the hub.
type Subscriber struct {
	C chan []byte
}

// Broadcaster holds the set of currently connected subscribers and
// delivers published events to each of them independently. Registration,
// removal and publishing are safe to call concurrently.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	buffer int
	closed bool
}

// NewBroadcaster creates a hub whose subscribers buffer up to buffer
// undelivered events each.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster{
		subs:   make(map[*Subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new live subscriber.
func (b *Broadcaster) Subscribe() *Subscriber {
	sub := &Subscriber{C: make(chan []byte, b.buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.C)
		return sub
	}
	b.subs[sub] = struct{}{}
	metrics.StreamSubscribers.Set(float64(len(b.subs)))
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Removing a
// subscriber twice, or one the hub has never seen, is a no-op. The close
// happens under the hub lock so it can never race a concurrent Publish
// sending on the same channel.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.C)
	metrics.StreamSubscribers.Set(float64(len(b.subs)))
}

// Publish delivers event to every currently registered subscriber.
// Delivery is best effort: a subscriber whose buffer is full misses the
// event, and no failure ever surfaces to the publisher or affects the
// remaining subscribers. The fan-out runs under the hub lock; every send
// is non-blocking, so the lock is only ever held for the channel handoff
// itself, never for a waiting consumer.
func (b *Broadcaster) Publish(event []byte) {
	metrics.BroadcastsTotal.Inc()

	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.C <- event:
		default:
			// Slow consumer; drop rather than stall the fan-out loop.
			metrics.BroadcastDrops.Inc()
			slog.Debug("dropped event for slow stream subscriber")
		}
	}
}

// Len reports the number of currently registered subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close removes every subscriber and rejects future registrations. Like
// Unsubscribe, the channel closes happen under the hub lock so an
// in-flight Publish is fully serialized with them.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.C)
	}
	b.subs = make(map[*Subscriber]struct{})
	metrics.StreamSubscribers.Set(0)
}
