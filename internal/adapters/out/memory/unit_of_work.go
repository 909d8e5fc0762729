package memory

import (
	"context"
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
)

var ErrNoTransaction = errors.New("no active transaction")

type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork stages writes until Commit. Outside Begin/Commit repositories
// write through immediately, mirroring an autocommit connection.
type UnitOfWork struct {
	store  *Store
	active bool
	writes []write
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.active {
		return nil
	}
	u.active = true
	u.writes = nil
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}

	u.store.mu.Lock()
	err := u.store.apply(u.writes)
	u.store.mu.Unlock()

	u.active = false
	u.writes = nil
	return err
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}
	u.active = false
	u.writes = nil
	return nil
}

func (u *UnitOfWork) AgentRepository() ports.AgentRepository {
	return &AgentRepository{uow: u}
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: u}
}

func (u *UnitOfWork) stage(w write) error {
	if u.active {
		u.writes = append(u.writes, w)
		return nil
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return u.store.apply([]write{w})
}
