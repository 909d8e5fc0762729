package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/memory"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newAgent(t *testing.T) *agent.Agent {
	t.Helper()
	a, err := agent.NewAgent(kernel.NewUUID(), "rider", "almaty", 5, agent.DefaultRadiusBounds())
	require.NoError(t, err)
	return a
}

func newOrder(t *testing.T, agentID kernel.UUID) *order.Order {
	t.Helper()
	pickup, err := kernel.NewGeoPoint(43.2389, 76.8897)
	require.NoError(t, err)
	dropoff, err := kernel.NewGeoPoint(43.2500, 76.9000)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), order.Draft{
		AgentID:        agentID,
		PickupName:     "Cafe",
		Pickup:         pickup,
		DropoffAddress: "Abay Ave 10",
		Dropoff:        dropoff,
		DistanceKm:     1.5,
		TimerSeconds:   1380,
		Amount:         3.7,
	}, now, time.Hour)
	require.NoError(t, err)
	return o
}

func TestUnitOfWork_CommitMakesWritesVisible(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	a := newAgent(t)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AgentRepository().Add(ctx, a))

	_, err := factory.Create().AgentRepository().Get(ctx, a.ID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	require.NoError(t, uow.Commit(ctx))

	loaded, err := factory.Create().AgentRepository().Get(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.Name(), loaded.Name())
	assert.Equal(t, 0, loaded.Version())
}

func TestUnitOfWork_RollbackDiscardsWrites(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	a := newAgent(t)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.AgentRepository().Add(ctx, a))
	require.NoError(t, uow.Rollback(ctx))

	_, err := factory.Create().AgentRepository().Get(ctx, a.ID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.ErrorIs(t, uow.Rollback(ctx), memory.ErrNoTransaction)
}

func TestRepository_UpdateChecksVersion(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	a := newAgent(t)
	require.NoError(t, factory.Create().AgentRepository().Add(ctx, a))

	first, err := factory.Create().AgentRepository().Get(ctx, a.ID())
	require.NoError(t, err)
	second, err := factory.Create().AgentRepository().Get(ctx, a.ID())
	require.NoError(t, err)

	require.NoError(t, factory.Create().AgentRepository().Update(ctx, first))
	err = factory.Create().AgentRepository().Update(ctx, second)
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)

	reloaded, err := factory.Create().AgentRepository().Get(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Version())
}

func TestOrderRepository_OneOpenOrderPerAgent(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	a := newAgent(t)

	require.NoError(t, factory.Create().OrderRepository().Add(ctx, newOrder(t, a.ID())))
	err := factory.Create().OrderRepository().Add(ctx, newOrder(t, a.ID()))
	require.ErrorIs(t, err, ports.ErrAgentHasActiveOrder)

	open, err := factory.Create().OrderRepository().GetActiveByAgent(ctx, a.ID())
	require.NoError(t, err)
	require.NoError(t, open.Cancel("", now.Add(time.Minute)))
	require.NoError(t, factory.Create().OrderRepository().Update(ctx, open))

	require.NoError(t, factory.Create().OrderRepository().Add(ctx, newOrder(t, a.ID())))
}

func TestOrderRepository_ConcurrentAddsCreateOneOrder(t *testing.T) {
	ctx := context.Background()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	a := newAgent(t)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow := factory.Create()
			_ = uow.Begin(ctx)
			defer func() { _ = uow.Rollback(ctx) }()
			if err := uow.OrderRepository().Add(ctx, newOrder(t, a.ID())); err != nil {
				results <- err
				return
			}
			results <- uow.Commit(ctx)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ports.ErrAgentHasActiveOrder)
	}
	assert.Equal(t, 1, succeeded)

	open, err := factory.Create().OrderRepository().GetAllOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestOrderRepository_StagedWritesAreReadable(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	a := newAgent(t)
	o := newOrder(t, a.ID())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.OrderRepository().Add(ctx, o))

	got, err := uow.OrderRepository().GetActiveByAgent(ctx, a.ID())
	require.NoError(t, err)
	assert.True(t, got.IsEqual(o))
	require.NoError(t, uow.Commit(ctx))
}

func TestEventLog_KeepsLatestPerAgent(t *testing.T) {
	log := memory.NewEventLog(2, nil)
	agentID := kernel.NewUUID()

	for _, typ := range []ports.EventType{ports.EventSearchStarted, ports.EventSearchProgress, ports.EventOrderFound} {
		require.NoError(t, log.Publish(t.Context(), ports.AgentEvent{AgentID: agentID, Type: typ}))
	}

	assert.Equal(t, []ports.EventType{ports.EventSearchProgress, ports.EventOrderFound}, log.Types(agentID))
	assert.Len(t, log.Drain(agentID), 2)
	assert.Empty(t, log.Drain(agentID))
}
