package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	httpadapter "github.com/RuslanFatikhov/q-ryer/internal/adapters/in/http"
	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/geojson"
	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/kafka"
	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/memory"
	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/postgres"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/catalogindex"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/search"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/queries"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/jobs"
	"github.com/RuslanFatikhov/q-ryer/internal/observability"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/keylock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// CompositionRoot owns every long-lived component. A nil gormDB selects the
// in-process store.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger
	clock  ports.Clock
	rnd    ports.RandomSource

	gormDB     *gorm.DB
	uowFactory ports.UnitOfWorkFactory
	economy    *economy.Holder
	locks      *keylock.KeyedMutex

	catalogSource *geojson.FileSource
	catalog       *catalogindex.Index

	events    *memory.EventLog
	kafka     *kafka.EventPublisher
	publisher ports.EventPublisher

	registry *prometheus.Registry
	metrics  *observability.Metrics
	searches *search.Registry
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	holder, err := economy.NewHolder(cfg.Economy)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:     cfg,
		logger:  logger,
		clock:   ports.SystemClock{},
		rnd:     ports.SystemRandom{},
		gormDB:  gormDB,
		economy: holder,
		locks:   keylock.New(),
		events:  memory.NewEventLog(memory.DefaultEventsPerAgent, logger),
	}

	if gormDB != nil {
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	} else {
		c.uowFactory = memory.NewUnitOfWorkFactory(memory.NewStore())
	}

	c.catalogSource = geojson.NewFileSource(cfg.CatalogDir)
	c.catalog = catalogindex.New(c.catalogSource, c.clock, logger)

	c.publisher = c.events
	if len(cfg.KafkaBrokers) > 0 {
		c.kafka = kafka.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaAgentEventsTopic)
		c.publisher = ports.Fanout{c.events, c.kafka}
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = observability.NewMetrics(c.registry)

	c.searches, err = search.NewRegistry(
		c.CreateFindOrderCommandHandler(),
		c.uowFactory,
		c.publisher,
		c.clock,
		c.rnd,
		c.metrics,
		logger,
		cfg.Search,
	)
	if err != nil {
		return nil, err
	}
	c.metrics.TrackGauge("searches_active", "Search sessions in progress", func() float64 {
		return float64(c.searches.Active())
	})

	return c, nil
}

func (c *CompositionRoot) Economy() *economy.Holder {
	return c.economy
}

func (c *CompositionRoot) Catalog() *catalogindex.Index {
	return c.catalog
}

func (c *CompositionRoot) Searches() *search.Registry {
	return c.searches
}

// Regions returns the configured regions, or every region of the catalog.
func (c *CompositionRoot) Regions(ctx context.Context) ([]string, error) {
	if len(c.cfg.Regions) > 0 {
		return c.cfg.Regions, nil
	}
	return c.catalogSource.Regions(ctx)
}

// WarmUp loads every served region so the first search does not pay for
// parsing. Regions that fail are logged and retried lazily.
func (c *CompositionRoot) WarmUp(ctx context.Context) error {
	regions, err := c.Regions(ctx)
	if err != nil {
		return err
	}
	for _, regionID := range regions {
		if err = c.catalog.LoadRegion(ctx, regionID); err != nil {
			c.logger.WarnContext(ctx, "catalog region not warmed up", "region", regionID, "error", err)
		}
	}
	return nil
}

// Reload swaps in the economy of cfg and re-reads every served region.
func (c *CompositionRoot) Reload(ctx context.Context, cfg Config) error {
	if err := c.economy.Store(cfg.Economy); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "economy config reloaded")

	regions, err := c.Regions(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, regionID := range regions {
		errs = append(errs, c.catalog.Reload(ctx, regionID))
	}
	return errors.Join(errs...)
}

// Close stops running searches and flushes the event transport.
func (c *CompositionRoot) Close(ctx context.Context) error {
	err := c.searches.Shutdown(ctx)
	if c.kafka != nil {
		err = errors.Join(err, c.kafka.Close())
	}
	return err
}

func (c *CompositionRoot) CreateCreateAgentCommandHandler() commands.CreateAgentCommandHandler {
	return commands.NewCreateAgentCommandHandler(c.agentUoWFactory(), commands.AgentDefaults{
		RegionID:       c.cfg.DefaultRegion,
		SearchRadiusKm: c.cfg.DefaultSearchRadiusKm,
		Bounds:         c.cfg.RadiusBounds,
	})
}

func (c *CompositionRoot) CreateUpdatePositionCommandHandler() commands.UpdatePositionCommandHandler {
	return commands.NewUpdatePositionCommandHandler(c.fullUoWFactory(), c.economy, c.publisher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateUpdateSearchRadiusCommandHandler() commands.UpdateSearchRadiusCommandHandler {
	return commands.NewUpdateSearchRadiusCommandHandler(c.agentUoWFactory(), c.cfg.RadiusBounds)
}

func (c *CompositionRoot) CreateFindOrderCommandHandler() commands.FindOrderCommandHandler {
	matcher := services.NewOrderMatcher(c.catalog, c.rnd, c.cfg.Dropoff, c.cfg.VendorTopK)
	return commands.NewFindOrderCommandHandler(c.fullUoWFactory(), matcher, c.economy, c.locks, c.clock, c.metrics)
}

func (c *CompositionRoot) CreatePickupOrderCommandHandler() commands.PickupOrderCommandHandler {
	return commands.NewPickupOrderCommandHandler(
		c.orderUoWFactory(), c.economy, c.locks, c.publisher, c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateDeliverOrderCommandHandler() commands.DeliverOrderCommandHandler {
	return commands.NewDeliverOrderCommandHandler(
		c.fullUoWFactory(), c.economy, c.locks, c.publisher, c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.locks, c.publisher, c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateExpireOrdersCommandHandler() commands.ExpireOrdersCommandHandler {
	return commands.NewExpireOrdersCommandHandler(c.orderUoWFactory(), c.locks, c.publisher, c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateGetActiveOrderQueryHandler() queries.GetActiveOrderQueryHandler {
	return queries.NewGetActiveOrderQueryHandler(c.uowFactory, c.clock)
}

func (c *CompositionRoot) CreateCheckZonesQueryHandler() queries.CheckZonesQueryHandler {
	return queries.NewCheckZonesQueryHandler(c.uowFactory, c.economy)
}

// CreateGetOpenOrdersQueryHandler returns nil with the in-process store.
func (c *CompositionRoot) CreateGetOpenOrdersQueryHandler() *queries.GetOpenOrdersQueryHandler {
	if c.gormDB == nil {
		return nil
	}
	h := queries.NewGetOpenOrdersQueryHandler(c.gormDB)
	return &h
}

// CreateGetAgentStatsQueryHandler returns nil with the in-process store.
func (c *CompositionRoot) CreateGetAgentStatsQueryHandler() *queries.GetAgentStatsQueryHandler {
	if c.gormDB == nil {
		return nil
	}
	h := queries.NewGetAgentStatsQueryHandler(c.gormDB)
	return &h
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	handlers := httpadapter.Handlers{
		CreateAgent:        c.CreateCreateAgentCommandHandler(),
		UpdatePosition:     c.CreateUpdatePositionCommandHandler(),
		UpdateSearchRadius: c.CreateUpdateSearchRadiusCommandHandler(),
		PickupOrder:        c.CreatePickupOrderCommandHandler(),
		DeliverOrder:       c.CreateDeliverOrderCommandHandler(),
		CancelOrder:        c.CreateCancelOrderCommandHandler(),
		GetActiveOrder:     c.CreateGetActiveOrderQueryHandler(),
		CheckZones:         c.CreateCheckZonesQueryHandler(),
		GetOpenOrders:      c.CreateGetOpenOrdersQueryHandler(),
		GetAgentStats:      c.CreateGetAgentStatsQueryHandler(),
	}
	return httpadapter.NewServer(handlers, c.searches, c.economy, c.clock, c.logger, httpadapter.Options{
		Regions:  regionResolver{root: c},
		Events:   c.events,
		Metrics:  promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry}),
		Observer: c.metrics,
	})
}

func (c *CompositionRoot) CreateJobManager(ctx context.Context) (*jobs.JobManager, error) {
	all := []jobs.Job{
		jobs.NewOrderExpiryJob(c.CreateExpireOrdersCommandHandler(), c.cfg.ExpirySweepSchedule, c.logger),
	}
	if c.cfg.CatalogRefreshSchedule != "" {
		regions, err := c.Regions(ctx)
		if err != nil {
			return nil, fmt.Errorf("catalog refresh job: %w", err)
		}
		all = append(all, jobs.NewCatalogRefreshJob(c.catalog, regions, c.cfg.CatalogRefreshSchedule, c.logger))
	}
	return jobs.NewJobManager(all...)
}

func (c *CompositionRoot) fullUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) agentUoWFactory() commands.AgentUoWFactory {
	return FuncAgentUoWFactory(func() commands.AgentUoW {
		return c.uowFactory.Create()
	})
}

// regionResolver limits the catalog's region lookups to the served regions.
type regionResolver struct {
	root *CompositionRoot
}

func (r regionResolver) Regions(ctx context.Context) ([]string, error) {
	return r.root.Regions(ctx)
}

func (r regionResolver) NearestRegion(ctx context.Context, p kernel.GeoPoint) (string, error) {
	regionID, err := r.root.catalogSource.NearestRegion(ctx, p)
	if err != nil {
		return "", err
	}
	if served := r.root.cfg.Regions; len(served) > 0 && !slices.Contains(served, regionID) {
		return "", fmt.Errorf("%w: %s is not served", ports.ErrRegionNotFound, regionID)
	}
	return regionID, nil
}

type FuncAgentUoWFactory func() commands.AgentUoW

func (f FuncAgentUoWFactory) Create() commands.AgentUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
