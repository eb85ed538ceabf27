package shopsvc

import (
	"encoding/json"
	"sync"

	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/observability"
)

// broadcaster fans change events out to every connected event-stream
// subscriber. Sends never block: a slow subscriber loses events rather
// than stalling the mutation path.
type broadcaster struct {
	mu   sync.Mutex
	subs map[chan domain.ChangeEvent]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan domain.ChangeEvent]struct{})}
}

func (b *broadcaster) subscribe() chan domain.ChangeEvent {
	ch := make(chan domain.ChangeEvent, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *broadcaster) unsubscribe(ch chan domain.ChangeEvent) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// publish marshals payload and delivers the event to all subscribers.
func (b *broadcaster) publish(et domain.EntityType, action domain.ChangeAction, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	ev := domain.ChangeEvent{EntityType: et, Action: action, Data: data}
	observability.EventPublished.Add(1)
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.Unlock()
}

// publishDelete emits a DELETE event carrying only the id.
func (b *broadcaster) publishDelete(et domain.EntityType, id string) {
	b.publish(et, domain.ActionDelete, map[string]string{"id": id})
}
