// Package events is the pipeline's observability sink: a channel-based
// pub-sub bus. Publishing is fire-and-forget and never blocks; a slow
// subscriber loses events rather than stalling a task.
package events

import (
	"sync"
)

const defaultBufSize = 256

// subscription pairs a delivery channel with an optional topic filter.
// A nil topic set receives every topic.
type subscription struct {
	topics map[string]struct{}
	ch     chan Event
}

// Bus is a non-blocking pub-sub event bus safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscription
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers interest in the given topics and returns the
// delivery channel. With no topics, the channel receives every event.
// bufSize defaults to 256 when <= 0.
func (b *Bus) Subscribe(bufSize int, topics ...string) <-chan Event {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	ch := make(chan Event, bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}

	sub := &subscription{ch: ch}
	if len(topics) > 0 {
		sub.topics = make(map[string]struct{}, len(topics))
		for _, t := range topics {
			sub.topics[t] = struct{}{}
		}
	}
	b.subs = append(b.subs, sub)

	return ch
}

// Publish delivers event to every matching subscriber. If a
// subscriber's channel is full the event is dropped for that
// subscriber; Publish never blocks the caller.
func (b *Bus) Publish(topic string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		if sub.topics != nil {
			if _, ok := sub.topics[topic]; !ok {
				continue
			}
		}
		select {
		case sub.ch <- event:
		default:
			// Subscriber is behind; drop rather than block.
		}
	}
}

// Close closes all subscriber channels. Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}
