package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"htmx-tictactoe/models"
)

const subscriberBuffer = 10

// Subscriber receives the events of one session until its context ends.
type Subscriber struct {
	ID        string
	SessionID string
	Channel   chan models.GameEvent
	Context   context.Context
}

// Hub fans events out to every subscriber of a session, typically one per
// open browser tab.
type Hub struct {
	logger      *slog.Logger
	mu          sync.Mutex
	subscribers map[string][]*Subscriber
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "events"),
		subscribers: make(map[string][]*Subscriber),
	}
}

// Subscribe creates and registers a new subscriber for a session
func (that *Hub) Subscribe(ctx context.Context, sessionID string) *Subscriber {
	subscriber := &Subscriber{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Channel:   make(chan models.GameEvent, subscriberBuffer),
		Context:   ctx,
	}

	that.mu.Lock()
	that.subscribers[sessionID] = append(that.subscribers[sessionID], subscriber)
	that.mu.Unlock()

	return subscriber
}

// Unsubscribe removes a subscriber and closes its channel
func (that *Hub) Unsubscribe(subscriber *Subscriber) {
	that.mu.Lock()
	defer that.mu.Unlock()

	subscribers, exists := that.subscribers[subscriber.SessionID]
	if !exists {
		return
	}

	for i, sub := range subscribers {
		if sub.ID == subscriber.ID {
			that.subscribers[subscriber.SessionID] = append(subscribers[:i:i], subscribers[i+1:]...)
			close(sub.Channel)
			break
		}
	}

	if len(that.subscribers[subscriber.SessionID]) == 0 {
		delete(that.subscribers, subscriber.SessionID)
	}
}

// Broadcast sends an event to all subscribers of a session. Slow
// subscribers whose buffer is full miss the event.
func (that *Hub) Broadcast(event models.GameEvent) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, subscriber := range that.subscribers[event.SessionID] {
		if subscriber.Context.Err() != nil {
			continue
		}

		select {
		case subscriber.Channel <- event:
		default:
			that.logger.Warn("subscriber buffer full, event dropped",
				"sessionID", event.SessionID, "subscriberID", subscriber.ID, "type", event.Type)
		}
	}
}

// Count returns the number of subscribers of a session.
func (that *Hub) Count(sessionID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.subscribers[sessionID])
}
