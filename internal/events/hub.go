package events

import (
	"sync"
)

const subscriberBuffer = 32

type Subscriber struct {
	Events chan Event
	// Token restricts delivery to one editing session; empty receives all.
	Token string
}

// Hub delivers events to subscribers without ever blocking the publisher.
type Hub struct {
	subscribers map[*Subscriber]bool
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
	}
}

func (h *Hub) Subscribe(token string) *Subscriber {
	s := &Subscriber{
		Events: make(chan Event, subscriberBuffer),
		Token:  token,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[s] = true
	return s
}

func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[s]; !ok {
		return
	}
	delete(h.subscribers, s)
	close(s.Events)
}

// Publish never blocks. When a subscriber's buffer is full the event is
// dropped, unless it is Required: then the oldest buffered event makes room.
// A slow subscriber may still miss progress signals, Session.State stays
// authoritative.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subscribers {
		if s.Token != "" && s.Token != e.Token {
			continue
		}
		select {
		case s.Events <- e:
			continue
		default:
		}
		if !e.Required() {
			continue
		}
		select {
		case <-s.Events:
		default:
		}
		select {
		case s.Events <- e:
		default:
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
