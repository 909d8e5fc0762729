package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "github.com/RuslanFatikhov/q-ryer/internal/adapters/out/postgres"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/queries"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type ReadModelQueriesTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	factory    ports.UnitOfWorkFactory
	openOrders queries.GetOpenOrdersQueryHandler
	stats      queries.GetAgentStatsQueryHandler
}

func (suite *ReadModelQueriesTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db
	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
	suite.openOrders = queries.NewGetOpenOrdersQueryHandler(db)
	suite.stats = queries.NewGetAgentStatsQueryHandler(db)
}

func (suite *ReadModelQueriesTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *ReadModelQueriesTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, agents").Error)
}

func (suite *ReadModelQueriesTestSuite) TestGetOpenOrders_EmptyDatabase_ReturnsEmptySlice() {
	result, err := suite.openOrders.Handle(context.Background(), queries.NewGetOpenOrdersQuery())

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *ReadModelQueriesTestSuite) TestGetOpenOrders_SkipsClosedOrders_OldestFirst() {
	t := suite.T()
	first := newTestAgent(t, "First")
	second := newTestAgent(t, "Second")
	third := newTestAgent(t, "Third")

	older := newTestOrder(t, first.ID(), startOfDay)
	newer := newTestOrder(t, second.ID(), startOfDay.Add(time.Minute))
	suite.Require().NoError(newer.Pickup(startOfDay.Add(2 * time.Minute)))
	cancelled := newTestOrder(t, third.ID(), startOfDay)
	suite.Require().NoError(cancelled.Cancel("shift_ended", startOfDay))

	seed(t, suite.factory, first, older)
	seed(t, suite.factory, second, newer)
	seed(t, suite.factory, third, cancelled)

	result, err := suite.openOrders.Handle(context.Background(), queries.NewGetOpenOrdersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	suite.Equal(older.ID(), result[0].ID)
	suite.Equal(first.ID(), result[0].AgentID)
	suite.Equal("pending", result[0].Status)
	suite.Equal(newer.ID(), result[1].ID)
	suite.Equal("active", result[1].Status)
	suite.Equal("Abay Ave 10", result[1].DropoffAddress)
	suite.True(result[0].ExpiresAt.Equal(startOfDay.Add(time.Hour)))
}

func (suite *ReadModelQueriesTestSuite) TestGetOpenOrders_InvalidQuery_ReturnsError() {
	result, err := suite.openOrders.Handle(context.Background(), queries.GetOpenOrdersQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetOpenOrdersQueryIsNotConstructed)
	suite.Nil(result)
}

func (suite *ReadModelQueriesTestSuite) TestGetAgentStats_CountsEveryOutcome() {
	t := suite.T()
	ctx := context.Background()
	a := newTestAgent(t, "Aigerim")
	seed(t, suite.factory, a)

	cfg := economy.DefaultConfig()
	for i := range 2 {
		o := newTestOrder(t, a.ID(), startOfDay.Add(time.Duration(i)*time.Hour))
		suite.Require().NoError(o.Pickup(o.CreatedAt().Add(time.Minute)))
		settlement, err := o.Deliver(o.CreatedAt().Add(10*time.Minute), cfg)
		suite.Require().NoError(err)
		suite.Require().NoError(a.ApplySettlement(settlement))
		seed(t, suite.factory, nil, o)
	}
	suite.Require().NoError(suite.factory.Create().AgentRepository().Update(ctx, a))

	cancelled := newTestOrder(t, a.ID(), startOfDay.Add(3*time.Hour))
	suite.Require().NoError(cancelled.Cancel(order.DefaultCancelReason, cancelled.CreatedAt()))
	expired := newTestOrder(t, a.ID(), startOfDay.Add(4*time.Hour))
	closed, err := expired.Expire(expired.ExpiresAt())
	suite.Require().NoError(err)
	suite.Require().True(closed)
	seed(t, suite.factory, nil, cancelled, expired)

	query, err := queries.NewGetAgentStatsQuery(a.ID())
	suite.Require().NoError(err)

	stats, err := suite.stats.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal("Aigerim", stats.Name)
	suite.Equal(2, stats.CompletedOrders)
	suite.Equal(1, stats.CancelledOrders)
	suite.Equal(1, stats.ExpiredOrders)
	suite.Equal(2, stats.TotalDeliveries)
	suite.InDelta(10.2, stats.TotalEarnings, 1e-9)
	suite.InDelta(10.2, stats.Balance, 1e-9)
	suite.InDelta(5.1, stats.AveragePayout, 1e-9)
}

func (suite *ReadModelQueriesTestSuite) TestGetAgentStats_AgentWithoutOrders_ReturnsZeroes() {
	a := newTestAgent(suite.T(), "Daniyar")
	seed(suite.T(), suite.factory, a)
	query, err := queries.NewGetAgentStatsQuery(a.ID())
	suite.Require().NoError(err)

	stats, err := suite.stats.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Zero(stats.CompletedOrders)
	suite.Zero(stats.TotalEarnings)
	suite.Zero(stats.AveragePayout)
}

func (suite *ReadModelQueriesTestSuite) TestGetAgentStats_UnknownAgent_ReturnsNotFound() {
	query, err := queries.NewGetAgentStatsQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.stats.Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestReadModelQueriesTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ReadModelQueriesTestSuite))
}
