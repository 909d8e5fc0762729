package search

import (
	"context"
	"errors"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/queries"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/catalog"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
)

type StartedPayload struct {
	TotalTicks int     `json:"total_ticks"`
	RadiusKm   float64 `json:"radius_km,omitempty"`
}

type ProgressPayload struct {
	Elapsed int `json:"elapsed"`
	Total   int `json:"total"`
}

type FoundPayload struct {
	Order       queries.OrderView   `json:"order"`
	Vendor      catalog.Vendor      `json:"vendor"`
	Destination catalog.Destination `json:"destination"`
	Stats       economy.Stats       `json:"stats"`
}

type NotFoundPayload struct {
	Reason string `json:"reason"`
	Retry  bool   `json:"retry"`
}

type FailedPayload struct {
	Error string `json:"error"`
}

func (r *Registry) search(s *Session) Outcome {
	r.emit(s, ports.EventSearchStarted, StartedPayload{TotalTicks: s.totalTicks, RadiusKm: s.radiusKm})

	ticker := time.NewTicker(r.settings.Tick)
	defer ticker.Stop()

	for elapsed := 1; elapsed <= s.totalTicks; elapsed++ {
		select {
		case <-s.ctx.Done():
			return Outcome{State: Cancelled}
		case <-ticker.C:
			r.emit(s, ports.EventSearchProgress, ProgressPayload{Elapsed: elapsed, Total: s.totalTicks})
		}
	}

	if s.ctx.Err() != nil {
		return Outcome{State: Cancelled}
	}

	cmd, err := commands.NewFindOrderCommand(s.agentID, "", s.radiusKm)
	if err != nil {
		return Outcome{State: Failed, Err: err}
	}

	found, err := r.finder.Handle(s.ctx, cmd)
	switch {
	case err == nil:
		return Outcome{State: Found, Found: &found}
	case s.ctx.Err() != nil && errors.Is(err, context.Canceled):
		return Outcome{State: Cancelled}
	case errors.Is(err, services.ErrNoVendorsInRange), errors.Is(err, services.ErrNoDestinationsInRange):
		return Outcome{State: NotFound, Err: err}
	default:
		return Outcome{State: Failed, Err: err}
	}
}

// announce publishes the terminal event of a session.
func (r *Registry) announce(s *Session) {
	switch s.outcome.State {
	case Found:
		found := s.outcome.Found
		r.emit(s, ports.EventOrderFound, FoundPayload{
			Order:       queries.NewOrderView(found.Order, r.clock.Now()),
			Vendor:      found.Vendor,
			Destination: found.Destination,
			Stats:       found.Stats,
		})
	case NotFound:
		r.emit(s, ports.EventNoOrdersFound, NotFoundPayload{Reason: s.outcome.Err.Error(), Retry: true})
	case Cancelled:
		r.emit(s, ports.EventSearchCancelled, nil)
	case Failed:
		r.logger.Error("search failed", "agent_id", s.agentID.String(), "error", s.outcome.Err)
		r.emit(s, ports.EventSearchFailed, FailedPayload{Error: s.outcome.Err.Error()})
	}
}

// emit never blocks on a cancelled session: terminal events still go out.
func (r *Registry) emit(s *Session, eventType ports.EventType, payload any) {
	if r.publisher == nil {
		return
	}
	ctx := context.WithoutCancel(s.ctx)
	event := ports.AgentEvent{
		AgentID:    s.agentID,
		Type:       eventType,
		Payload:    payload,
		OccurredAt: r.clock.Now(),
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "search event not published",
			"agent_id", s.agentID.String(), "type", string(eventType), "error", err)
	}
}
