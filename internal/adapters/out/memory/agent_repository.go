package memory

import (
	"context"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

type AgentRepository struct {
	uow *UnitOfWork
}

func (r *AgentRepository) Add(_ context.Context, aggregate *agent.Agent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s := aggregate.Snapshot()
	return r.uow.stage(write{agent: &s, insert: true})
}

func (r *AgentRepository) Update(_ context.Context, aggregate *agent.Agent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s := aggregate.Snapshot()
	return r.uow.stage(write{agent: &s, expectVersion: s.Version})
}

// Get sees the unit of work's own staged writes first.
func (r *AgentRepository) Get(_ context.Context, id kernel.UUID) (*agent.Agent, error) {
	for i := len(r.uow.writes) - 1; i >= 0; i-- {
		if w := r.uow.writes[i]; w.agent != nil && w.agent.ID == id {
			s := *w.agent
			s.Version = w.expectVersion + 1
			if w.insert {
				s.Version = 0
			}
			return agent.RestoreAgent(s)
		}
	}

	r.uow.store.mu.RLock()
	s, ok := r.uow.store.agents[id]
	r.uow.store.mu.RUnlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("agent", id)
	}
	return agent.RestoreAgent(s)
}
