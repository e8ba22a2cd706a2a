package server

import (
	"encoding/json"
	"sync"

	"github.com/lybotics/stagequest/internal/engine"
)

// Broker is an in-process pub/sub for engine events, keyed by player email.
// It implements engine.Notifier.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the
// given player, including broadcasts.
func (b *Broker) Subscribe(email string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[email] == nil {
		b.subs[email] = make(map[chan []byte]struct{})
	}
	b.subs[email][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the player's subscribers.
func (b *Broker) Unsubscribe(email string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[email], ch)
	if len(b.subs[email]) == 0 {
		delete(b.subs, email)
	}
	b.mu.Unlock()
}

// Notify publishes ev to the player's subscribers, or to everyone when
// email is empty.
func (b *Broker) Notify(email string, ev engine.Event) {
	data, _ := json.Marshal(ev)
	b.mu.RLock()
	defer b.mu.RUnlock()

	if email != "" {
		publish(b.subs[email], data)
		return
	}
	for _, subs := range b.subs {
		publish(subs, data)
	}
}

func publish(subs map[chan []byte]struct{}, data []byte) {
	for ch := range subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
}

var _ engine.Notifier = (*Broker)(nil)
