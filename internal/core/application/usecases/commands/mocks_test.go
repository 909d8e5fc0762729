package commands_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/memory"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/keylock"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/logging"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) Add(ctx context.Context, a *agent.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) Update(ctx context.Context, a *agent.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Agent), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetActiveByAgent(ctx context.Context, agentID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllOpen(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockUoW struct {
	mock.Mock
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) AgentRepository() ports.AgentRepository {
	args := m.Called()
	return args.Get(0).(ports.AgentRepository)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockUoWFactory struct {
	mock.Mock
}

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockAgentUoWFactory struct {
	mock.Mock
}

func (m *MockAgentUoWFactory) Create() commands.AgentUoW {
	args := m.Called()
	return args.Get(0).(commands.AgentUoW)
}

type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) Match(ctx context.Context, req services.MatchRequest, cfg economy.Config) (services.Match, error) {
	args := m.Called(ctx, req, cfg)
	return args.Get(0).(services.Match), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event ports.AgentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// testClock is a settable ports.Clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type uowFunc func() commands.UoW

func (f uowFunc) Create() commands.UoW { return f() }

type orderUoWFunc func() commands.OrderUoW

func (f orderUoWFunc) Create() commands.OrderUoW { return f() }

type agentUoWFunc func() commands.AgentUoW

func (f agentUoWFunc) Create() commands.AgentUoW { return f() }

var (
	startOfDay = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	agentHome  = [2]float64{43.2389, 76.8897}
	vendorAt   = [2]float64{43.2479, 76.8897}
	dropoffAt  = [2]float64{43.2659, 76.8897}
)

// game is a fully wired set of handlers over the memory adapter.
type game struct {
	store   *memory.Store
	uows    *memory.UnitOfWorkFactory
	events  *memory.EventLog
	clock   *testClock
	economy *economy.Holder
	locks   *keylock.KeyedMutex

	createAgent commands.CreateAgentCommandHandler
	position    commands.UpdatePositionCommandHandler
	radius      commands.UpdateSearchRadiusCommandHandler
	find        commands.FindOrderCommandHandler
	pickup      commands.PickupOrderCommandHandler
	deliver     commands.DeliverOrderCommandHandler
	cancel      commands.CancelOrderCommandHandler
	expire      commands.ExpireOrdersCommandHandler
}

func newGame(t *testing.T, matcher commands.Matcher) *game {
	t.Helper()

	holder, err := economy.NewHolder(economy.DefaultConfig())
	require.NoError(t, err)

	g := &game{
		store:   memory.NewStore(),
		events:  memory.NewEventLog(0, nil),
		clock:   &testClock{now: startOfDay},
		economy: holder,
		locks:   keylock.New(),
	}
	g.uows = memory.NewUnitOfWorkFactory(g.store)

	full := uowFunc(func() commands.UoW { return g.uows.Create() })
	orders := orderUoWFunc(func() commands.OrderUoW { return g.uows.Create() })
	agents := agentUoWFunc(func() commands.AgentUoW { return g.uows.Create() })
	logger := logging.Discard()
	metrics := ports.NopMetrics{}

	g.createAgent = commands.NewCreateAgentCommandHandler(agents, commands.AgentDefaults{
		RegionID: "almaty", SearchRadiusKm: 5, Bounds: agent.DefaultRadiusBounds(),
	})
	g.position = commands.NewUpdatePositionCommandHandler(full, holder, g.events, g.clock, logger)
	g.radius = commands.NewUpdateSearchRadiusCommandHandler(agents, agent.DefaultRadiusBounds())
	g.find = commands.NewFindOrderCommandHandler(full, matcher, holder, g.locks, g.clock, metrics)
	g.pickup = commands.NewPickupOrderCommandHandler(orders, holder, g.locks, g.events, g.clock, metrics, logger)
	g.deliver = commands.NewDeliverOrderCommandHandler(full, holder, g.locks, g.events, g.clock, metrics, logger)
	g.cancel = commands.NewCancelOrderCommandHandler(orders, g.locks, g.events, g.clock, metrics, logger)
	g.expire = commands.NewExpireOrdersCommandHandler(orders, g.locks, g.events, g.clock, metrics, logger)
	return g
}

func geo(t *testing.T, latLon [2]float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(latLon[0], latLon[1])
	require.NoError(t, err)
	return p
}

// stubMatcher always offers the same vendor/destination pair.
type stubMatcher struct {
	pickup  kernel.GeoPoint
	dropoff kernel.GeoPoint
	calls   atomic.Int32
}

func fixedMatch(t *testing.T) *stubMatcher {
	t.Helper()
	return &stubMatcher{pickup: geo(t, vendorAt), dropoff: geo(t, dropoffAt)}
}

func (m *stubMatcher) Match(_ context.Context, req services.MatchRequest, cfg economy.Config) (services.Match, error) {
	m.calls.Add(1)
	distance := kernel.DistanceKm(m.pickup, m.dropoff)
	return services.Match{
		Draft: order.Draft{
			AgentID:        req.AgentID,
			PickupName:     "Navat",
			Pickup:         m.pickup,
			DropoffAddress: "Abay Ave 10",
			Dropoff:        m.dropoff,
			DistanceKm:     distance,
			TimerSeconds:   cfg.TimerSeconds(distance),
			Amount:         cfg.BasePayout(distance),
		},
		Stats: cfg.DeliveryStats(distance),
	}, nil
}

// registerAt creates an agent and reports one position.
func (g *game) registerAt(t *testing.T, latLon [2]float64) kernel.UUID {
	t.Helper()
	cmd, err := commands.NewCreateAgentCommand(kernel.NewUUID(), "rider", "", 0)
	require.NoError(t, err)
	id, err := g.createAgent.Handle(t.Context(), cmd)
	require.NoError(t, err)

	g.moveTo(t, id, latLon)
	return id
}

func (g *game) moveTo(t *testing.T, agentID kernel.UUID, latLon [2]float64) commands.PositionUpdate {
	t.Helper()
	cmd, err := commands.NewUpdatePositionCommand(agentID, latLon[0], latLon[1], 5)
	require.NoError(t, err)
	res, err := g.position.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return res
}

func (g *game) findOrder(t *testing.T, agentID kernel.UUID) *order.Order {
	t.Helper()
	cmd, err := commands.NewFindOrderCommand(agentID, "", 0)
	require.NoError(t, err)
	found, err := g.find.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return found.Order
}

func (g *game) agent(t *testing.T, id kernel.UUID) *agent.Agent {
	t.Helper()
	a, err := g.uows.Create().AgentRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return a
}

func (g *game) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := g.uows.Create().OrderRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return o
}
