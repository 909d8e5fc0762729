package ports

import (
	"context"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
)

type AgentRepository interface {
	Add(ctx context.Context, aggregate *agent.Agent) error

	// Update uses the same optimistic version check as OrderRepository.Update.
	Update(ctx context.Context, aggregate *agent.Agent) error

	Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error)
}
