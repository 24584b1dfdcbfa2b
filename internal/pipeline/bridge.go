package pipeline

import (
	"errors"
	"sync"
	"time"
)

// ErrPollTimeout is returned by Poll when no event arrives within the wait.
var ErrPollTimeout = errors.New("bridge: poll timed out")

// Bridge is the thread-safe, unbounded FIFO channel between a running
// session and its stream consumer. Emit never blocks the producer; Poll
// waits a bounded time so the consumer can synthesize heartbeats on idle.
//
// One producer (the session runner) and one consumer (the transport handler)
// per bridge instance; nothing is shared across sessions.
type Bridge struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{
		notify: make(chan struct{}, 1),
	}
}

// Emit appends an event to the queue. It never blocks.
func (b *Bridge) Emit(e Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Poll returns the oldest queued event, waiting up to timeout for one to
// arrive. On an idle gap it returns ErrPollTimeout so the caller can emit a
// ping instead of blocking indefinitely.
func (b *Bridge) Poll(timeout time.Duration) (Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		b.mu.Lock()
		if len(b.events) > 0 {
			e := b.events[0]
			b.events = b.events[1:]
			b.mu.Unlock()
			return e, nil
		}
		b.mu.Unlock()

		select {
		case <-b.notify:
		case <-timer.C:
			return Event{}, ErrPollTimeout
		}
	}
}

// Len reports the number of undelivered events.
func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
