package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/memory"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/search"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/queries"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"

	"github.com/labstack/echo/v4"
)

// Handlers groups the use cases the HTTP adapter exposes. The read models
// backed by raw SQL are optional; without them the routes answer 501.
type Handlers struct {
	// Command handlers
	CreateAgent        commands.CreateAgentCommandHandler
	UpdatePosition     commands.UpdatePositionCommandHandler
	UpdateSearchRadius commands.UpdateSearchRadiusCommandHandler
	PickupOrder        commands.PickupOrderCommandHandler
	DeliverOrder       commands.DeliverOrderCommandHandler
	CancelOrder        commands.CancelOrderCommandHandler

	// Query handlers
	GetActiveOrder queries.GetActiveOrderQueryHandler
	CheckZones     queries.CheckZonesQueryHandler
	GetOpenOrders  *queries.GetOpenOrdersQueryHandler
	GetAgentStats  *queries.GetAgentStatsQueryHandler
}

// RegionResolver places a new agent in the city closest to its first fix.
type RegionResolver interface {
	Regions(ctx context.Context) ([]string, error)
	NearestRegion(ctx context.Context, p kernel.GeoPoint) (string, error)
}

// Options carries the optional collaborators of the server.
type Options struct {
	Regions RegionResolver
	// Events is set when agent events are kept in process for polling clients.
	Events  *memory.EventLog
	Metrics http.Handler
	Observer
}

// Server maps HTTP requests onto the game's commands and queries.
type Server struct {
	handlers Handlers
	searches *search.Registry
	economy  *economy.Holder
	clock    ports.Clock
	logger   *slog.Logger
	opts     Options
}

func NewServer(
	handlers Handlers,
	searches *search.Registry,
	economyHolder *economy.Holder,
	clock ports.Clock,
	logger *slog.Logger,
	opts Options,
) *Server {
	return &Server{
		handlers: handlers,
		searches: searches,
		economy:  economyHolder,
		clock:    clock,
		logger:   logger.With("component", "http"),
		opts:     opts,
	}
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.HTTPErrorHandler = s.handleError
	if s.opts.Observer != nil {
		e.Use(observe(s.opts.Observer))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if s.opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.opts.Metrics))
	}

	api := e.Group("/api/v1")
	api.GET("/regions", s.GetRegions)
	api.GET("/orders/open", s.GetOpenOrders)
	api.GET("/economy", s.GetEconomy)
	api.PUT("/economy", s.ReplaceEconomy)

	api.POST("/agents", s.CreateAgent)
	agents := api.Group("/agents/:agent_id")
	agents.POST("/position", s.UpdatePosition)
	agents.PUT("/search-radius", s.UpdateSearchRadius)
	agents.GET("/stats", s.GetAgentStats)
	agents.GET("/events", s.DrainEvents)
	agents.POST("/zones", s.CheckZones)

	agents.POST("/search", s.StartSearch)
	agents.GET("/search", s.GetSearchStatus)
	agents.DELETE("/search", s.StopSearch)

	agents.GET("/order", s.GetActiveOrder)
	agents.POST("/orders/:order_id/pickup", s.PickupOrder)
	agents.POST("/orders/:order_id/deliver", s.DeliverOrder)
	agents.POST("/orders/:order_id/cancel", s.CancelOrder)
}
