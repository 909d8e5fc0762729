package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/logging"
)

const DefaultEventsPerAgent = 64

// EventLog is an in-process EventPublisher. It keeps the latest events per
// agent so polling clients can drain them.
type EventLog struct {
	mu       sync.Mutex
	perAgent int
	events   map[kernel.UUID][]ports.AgentEvent
	logger   *slog.Logger
}

func NewEventLog(perAgent int, logger *slog.Logger) *EventLog {
	if perAgent <= 0 {
		perAgent = DefaultEventsPerAgent
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &EventLog{
		perAgent: perAgent,
		events:   make(map[kernel.UUID][]ports.AgentEvent),
		logger:   logger.With("component", "event_log"),
	}
}

func (l *EventLog) Publish(ctx context.Context, event ports.AgentEvent) error {
	l.mu.Lock()
	queue := append(l.events[event.AgentID], event)
	if len(queue) > l.perAgent {
		queue = queue[len(queue)-l.perAgent:]
	}
	l.events[event.AgentID] = queue
	l.mu.Unlock()

	l.logger.DebugContext(ctx, "agent event", "agent_id", event.AgentID.String(), "type", string(event.Type))
	return nil
}

// Events returns a copy of the agent's buffered events, oldest first.
func (l *EventLog) Events(agentID kernel.UUID) []ports.AgentEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.AgentEvent(nil), l.events[agentID]...)
}

// Drain returns and forgets the agent's buffered events.
func (l *EventLog) Drain(agentID kernel.UUID) []ports.AgentEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.events[agentID]
	delete(l.events, agentID)
	if out == nil {
		return []ports.AgentEvent{}
	}
	return out
}

// Types lists the agent's buffered event types, oldest first.
func (l *EventLog) Types(agentID kernel.UUID) []ports.EventType {
	events := l.Events(agentID)
	out := make([]ports.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}
