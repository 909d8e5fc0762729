// Package memory keeps agents and orders in process memory. It is the storage
// of the "memory" deployment mode and of use case tests that need real
// concurrency semantics. Writes staged in a unit of work are applied at
// Commit under one store lock, so each commit is atomic and serialized.
package memory

import (
	"sync"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// Store holds snapshots rather than aggregates, so nothing a caller does to a
// loaded aggregate is visible before it is saved.
type Store struct {
	mu     sync.RWMutex
	agents map[kernel.UUID]agent.Snapshot
	orders map[kernel.UUID]order.Snapshot
}

func NewStore() *Store {
	return &Store{
		agents: make(map[kernel.UUID]agent.Snapshot),
		orders: make(map[kernel.UUID]order.Snapshot),
	}
}

// apply checks every staged write against current state and applies all of
// them or none. Caller holds s.mu for writing.
func (s *Store) apply(writes []write) error {
	agents := make(map[kernel.UUID]agent.Snapshot)
	orders := make(map[kernel.UUID]order.Snapshot)

	agentAt := func(id kernel.UUID) (agent.Snapshot, bool) {
		if a, ok := agents[id]; ok {
			return a, true
		}
		a, ok := s.agents[id]
		return a, ok
	}
	orderAt := func(id kernel.UUID) (order.Snapshot, bool) {
		if o, ok := orders[id]; ok {
			return o, true
		}
		o, ok := s.orders[id]
		return o, ok
	}

	for _, w := range writes {
		switch {
		case w.agent != nil:
			current, exists := agentAt(w.agent.ID)
			if err := checkVersion("agent", exists, current.Version, w); err != nil {
				return err
			}
			next := *w.agent
			next.Version = w.expectVersion + 1
			if w.insert {
				next.Version = 0
			}
			agents[next.ID] = next
		case w.order != nil:
			current, exists := orderAt(w.order.ID)
			if err := checkVersion("order", exists, current.Version, w); err != nil {
				return err
			}
			if w.order.Status.IsOpen() && s.hasOtherOpenOrder(w.order.AgentID, w.order.ID, orders) {
				return ports.ErrAgentHasActiveOrder
			}
			next := *w.order
			next.Version = w.expectVersion + 1
			if w.insert {
				next.Version = 0
			}
			orders[next.ID] = next
		}
	}

	for id, a := range agents {
		s.agents[id] = a
	}
	for id, o := range orders {
		s.orders[id] = o
	}
	return nil
}

func (s *Store) hasOtherOpenOrder(agentID, orderID kernel.UUID, staged map[kernel.UUID]order.Snapshot) bool {
	for id, o := range staged {
		if id != orderID && o.AgentID == agentID && o.Status.IsOpen() {
			return true
		}
	}
	for id, o := range s.orders {
		if id == orderID || o.AgentID != agentID || !o.Status.IsOpen() {
			continue
		}
		if st, ok := staged[id]; ok && !st.Status.IsOpen() {
			continue
		}
		return true
	}
	return false
}

func checkVersion(kind string, exists bool, current int, w write) error {
	switch {
	case w.insert && exists:
		return errs.NewValueIsInvalidError(kind + " already exists")
	case !w.insert && !exists:
		return errs.NewObjectNotFoundError(kind, w.id())
	case !w.insert && current != w.expectVersion:
		return errs.NewVersionIsInvalidError(kind)
	}
	return nil
}

type write struct {
	agent         *agent.Snapshot
	order         *order.Snapshot
	insert        bool
	expectVersion int
}

func (w write) id() kernel.UUID {
	if w.agent != nil {
		return w.agent.ID
	}
	return w.order.ID
}
