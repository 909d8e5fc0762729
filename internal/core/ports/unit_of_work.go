package ports

import (
	"context"
)

type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork scopes repository writes to one transaction. Repositories obtained
// after Begin write inside it; Rollback after Commit is a harmless no-op error.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	Commit(ctx context.Context) error

	Rollback(ctx context.Context) error

	AgentRepository() AgentRepository

	OrderRepository() OrderRepository
}
