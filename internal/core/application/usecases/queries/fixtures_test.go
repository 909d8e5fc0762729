package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/memory"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"

	"github.com/stretchr/testify/require"
)

var (
	startOfDay = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	vendorAt   = [2]float64{43.2479, 76.8897}
	dropoffAt  = [2]float64{43.2659, 76.8897}
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func point(t *testing.T, latLon [2]float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(latLon[0], latLon[1])
	require.NoError(t, err)
	return p
}

func newTestAgent(t *testing.T, name string) *agent.Agent {
	t.Helper()
	a, err := agent.NewAgent(kernel.NewUUID(), name, "almaty", 5, agent.DefaultRadiusBounds())
	require.NoError(t, err)
	return a
}

func newTestOrder(t *testing.T, agentID kernel.UUID, createdAt time.Time) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), order.Draft{
		AgentID:        agentID,
		PickupName:     "Green Cafe",
		Pickup:         point(t, vendorAt),
		DropoffAddress: "Abay Ave 10",
		Dropoff:        point(t, dropoffAt),
		DistanceKm:     2.0,
		TimerSeconds:   1740,
		Amount:         4.1,
	}, createdAt, time.Hour)
	require.NoError(t, err)
	return o
}

func seed(t *testing.T, factory ports.UnitOfWorkFactory, a *agent.Agent, orders ...*order.Order) {
	t.Helper()
	ctx := context.Background()
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	if a != nil {
		require.NoError(t, uow.AgentRepository().Add(ctx, a))
	}
	for _, o := range orders {
		require.NoError(t, uow.OrderRepository().Add(ctx, o))
	}
	require.NoError(t, uow.Commit(ctx))
}

func newMemoryFactory() ports.UnitOfWorkFactory {
	return memory.NewUnitOfWorkFactory(memory.NewStore())
}
