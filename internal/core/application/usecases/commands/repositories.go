// Package commands contains the game's write operations. Every handler follows
// the same shape: validate the command, open a unit of work, load aggregates,
// run the domain transition, save, commit, then publish events.
package commands

import (
	"context"

	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
)

type (
	// TxManager handles the transaction lifecycle of one unit of work.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	AgentRepoFactory interface {
		AgentRepository() ports.AgentRepository
	}

	// OrderUoW is used by handlers that only touch orders.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// AgentUoW is used by handlers that only touch agents.
	AgentUoW interface {
		TxManager
		AgentRepoFactory
	}

	AgentUoWFactory interface {
		Create() AgentUoW
	}

	// UoW spans both aggregates, e.g. delivery saves the completed order and
	// credits the agent in one transaction.
	//
	//	uow := factory.Create()
	//	err := uow.Begin(ctx)
	//	defer uow.Rollback(ctx)
	//
	//	orderRepo := uow.OrderRepository()
	//	agentRepo := uow.AgentRepository()
	//	// ... perform operations
	//
	//	err = uow.Commit(ctx)
	UoW interface {
		TxManager
		AgentRepoFactory
		OrderRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
