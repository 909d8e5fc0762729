package memory

import (
	"context"
	"sort"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

type OrderRepository struct {
	uow *UnitOfWork
}

// Add fails fast with ports.ErrAgentHasActiveOrder when the agent already has
// an open order; Commit repeats the check atomically.
func (r *OrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, err := r.GetActiveByAgent(ctx, aggregate.AgentID()); err == nil {
		return ports.ErrAgentHasActiveOrder
	}
	s := aggregate.Snapshot()
	return r.uow.stage(write{order: &s, insert: true})
}

func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s := aggregate.Snapshot()
	return r.uow.stage(write{order: &s, expectVersion: s.Version})
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	for _, s := range r.view() {
		if s.ID == id {
			return order.RestoreOrder(s)
		}
	}
	return nil, errs.NewObjectNotFoundError("order", id)
}

func (r *OrderRepository) GetActiveByAgent(_ context.Context, agentID kernel.UUID) (*order.Order, error) {
	for _, s := range r.view() {
		if s.AgentID == agentID && s.Status.IsOpen() {
			return order.RestoreOrder(s)
		}
	}
	return nil, errs.NewObjectNotFoundError("active order of agent", agentID)
}

func (r *OrderRepository) GetAllOpen(_ context.Context) ([]*order.Order, error) {
	result := make([]*order.Order, 0)
	for _, s := range r.view() {
		if !s.Status.IsOpen() {
			continue
		}
		o, err := order.RestoreOrder(s)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, nil
}

// view merges committed orders with this unit of work's staged ones, oldest
// first.
func (r *OrderRepository) view() []order.Snapshot {
	r.uow.store.mu.RLock()
	merged := make(map[kernel.UUID]order.Snapshot, len(r.uow.store.orders))
	for id, s := range r.uow.store.orders {
		merged[id] = s
	}
	r.uow.store.mu.RUnlock()

	for _, w := range r.uow.writes {
		if w.order == nil {
			continue
		}
		s := *w.order
		s.Version = w.expectVersion + 1
		if w.insert {
			s.Version = 0
		}
		merged[s.ID] = s
	}

	out := make([]order.Snapshot, 0, len(merged))
	for _, s := range merged {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
