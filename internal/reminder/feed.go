package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/voluntapp/voluntapp/internal/opportunity"
	"github.com/voluntapp/voluntapp/internal/postulation"
)

// MessageConsumer is the slice of the kafka consumer the hub needs.
// Satisfied by messaging.KafkaConsumer.
type MessageConsumer interface {
	Consume(ctx context.Context, handler func(key string, value []byte) error)
}

// Hub demultiplexes the two change-event topics to per-user subscribers.
// One consumer per topic serves every engine in the process; postulation
// events fan out by owning user, opportunity events go to everyone.
type Hub struct {
	mu                 sync.RWMutex
	postulationSubs    map[string]map[string]func(postulation.ChangeEvent) // userID -> subID -> fn
	allPostulationSubs map[string]func(postulation.ChangeEvent)            // subID -> fn
	opportunitySubs    map[string]func(opportunity.ChangeEvent)            // subID -> fn
}

func NewHub() *Hub {
	return &Hub{
		postulationSubs:    make(map[string]map[string]func(postulation.ChangeEvent)),
		allPostulationSubs: make(map[string]func(postulation.ChangeEvent)),
		opportunitySubs:    make(map[string]func(opportunity.ChangeEvent)),
	}
}

type subscription struct {
	cancel func()
}

func (s *subscription) Unsubscribe() {
	s.cancel()
}

// SubscribePostulations registers a handler for one user's postulation
// change events.
func (h *Hub) SubscribePostulations(userID string, fn func(postulation.ChangeEvent)) Subscription {
	subID := uuid.NewString()
	h.mu.Lock()
	if h.postulationSubs[userID] == nil {
		h.postulationSubs[userID] = make(map[string]func(postulation.ChangeEvent))
	}
	h.postulationSubs[userID][subID] = fn
	h.mu.Unlock()

	return &subscription{cancel: func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.postulationSubs[userID], subID)
		if len(h.postulationSubs[userID]) == 0 {
			delete(h.postulationSubs, userID)
		}
	}}
}

// SubscribeAllPostulations registers a handler for every postulation change
// event regardless of owner. The daemon uses it to spin up engines lazily
// for users it has not seen yet.
func (h *Hub) SubscribeAllPostulations(fn func(postulation.ChangeEvent)) Subscription {
	subID := uuid.NewString()
	h.mu.Lock()
	h.allPostulationSubs[subID] = fn
	h.mu.Unlock()

	return &subscription{cancel: func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.allPostulationSubs, subID)
	}}
}

// SubscribeOpportunities registers a handler for all opportunity change
// events.
func (h *Hub) SubscribeOpportunities(fn func(opportunity.ChangeEvent)) Subscription {
	subID := uuid.NewString()
	h.mu.Lock()
	h.opportunitySubs[subID] = fn
	h.mu.Unlock()

	return &subscription{cancel: func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.opportunitySubs, subID)
	}}
}

// RunPostulationFeed consumes the postulations topic until ctx is cancelled.
func (h *Hub) RunPostulationFeed(ctx context.Context, consumer MessageConsumer) {
	consumer.Consume(ctx, func(key string, value []byte) error {
		var ev postulation.ChangeEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode postulation event %s: %w", key, err)
		}
		h.dispatchPostulation(ev)
		return nil
	})
}

// RunOpportunityFeed consumes the opportunities topic until ctx is cancelled.
func (h *Hub) RunOpportunityFeed(ctx context.Context, consumer MessageConsumer) {
	consumer.Consume(ctx, func(key string, value []byte) error {
		var ev opportunity.ChangeEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode opportunity event %s: %w", key, err)
		}
		h.dispatchOpportunity(ev)
		return nil
	})
}

func (h *Hub) dispatchPostulation(ev postulation.ChangeEvent) {
	h.mu.RLock()
	all := make([]func(postulation.ChangeEvent), 0, len(h.allPostulationSubs))
	for _, fn := range h.allPostulationSubs {
		all = append(all, fn)
	}
	h.mu.RUnlock()

	// Catch-all subscribers run first so a lazily created engine is already
	// subscribed when per-user fan-out happens on later events.
	for _, fn := range all {
		fn(ev)
	}

	h.mu.RLock()
	subs := h.postulationSubs[ev.Record.UserID]
	handlers := make([]func(postulation.ChangeEvent), 0, len(subs))
	for _, fn := range subs {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

func (h *Hub) dispatchOpportunity(ev opportunity.ChangeEvent) {
	h.mu.RLock()
	handlers := make([]func(opportunity.ChangeEvent), 0, len(h.opportunitySubs))
	for _, fn := range h.opportunitySubs {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}
