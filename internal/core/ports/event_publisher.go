package ports

import (
	"context"
	"errors"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
)

type EventType string

const (
	EventSearchStarted   EventType = "search_started"
	EventSearchProgress  EventType = "search_progress"
	EventOrderFound      EventType = "order_found"
	EventNoOrdersFound   EventType = "no_orders_found"
	EventSearchCancelled EventType = "search_cancelled"
	EventSearchFailed    EventType = "search_failed"
	EventZoneStatus      EventType = "zone_status"
	EventOrderPickedUp   EventType = "order_picked_up"
	EventOrderDelivered  EventType = "order_delivered"
	EventOrderCancelled  EventType = "order_cancelled"
	EventOrderExpired    EventType = "order_expired"
)

// AgentEvent is a notification addressed to one agent. The transport decides
// how to reach the agent's sessions.
type AgentEvent struct {
	AgentID    kernel.UUID `json:"agent_id"`
	Type       EventType   `json:"type"`
	Payload    any         `json:"payload,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event AgentEvent) error
}

// Fanout delivers every event to each publisher in turn and joins their
// failures.
type Fanout []EventPublisher

func (f Fanout) Publish(ctx context.Context, event AgentEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
