package http

import (
	"errors"
	"net/http"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/queries"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/services"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"

	"github.com/labstack/echo/v4"
)

type agentCreated struct {
	ID       kernel.UUID `json:"id"`
	RegionID string      `json:"region_id,omitempty"`
}

type positionResponse struct {
	Position   kernel.GeoPoint      `json:"position"`
	Confidence string               `json:"gps_confidence"`
	Zone       *services.ZoneStatus `json:"zone,omitempty"`
}

// CreateAgent handles POST /api/v1/agents. A first fix in the body places the
// agent and, without an explicit region, picks the nearest city.
func (s *Server) CreateAgent(c echo.Context) error {
	var req createAgentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	agentID := kernel.NewUUID()
	var fix *commands.UpdatePositionCommand
	if req.present() {
		posCmd, err := commands.NewUpdatePositionCommand(agentID, *req.Latitude, *req.Longitude, req.AccuracyM)
		if err != nil {
			return err
		}
		fix = &posCmd
	}

	regionID := req.RegionID
	if regionID == "" && fix != nil && s.opts.Regions != nil {
		nearest, err := s.opts.Regions.NearestRegion(ctx, fix.Position())
		switch {
		case err == nil:
			regionID = nearest
		case !errors.Is(err, ports.ErrRegionNotFound):
			return err
		}
	}

	cmd, err := commands.NewCreateAgentCommand(agentID, req.Name, regionID, req.SearchRadiusKm)
	if err != nil {
		return err
	}
	id, err := s.handlers.CreateAgent.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	if fix != nil {
		if _, err = s.handlers.UpdatePosition.Handle(ctx, *fix); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusCreated, agentCreated{ID: id, RegionID: regionID})
}

// UpdatePosition handles POST /api/v1/agents/:agent_id/position.
func (s *Server) UpdatePosition(c echo.Context) error {
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}
	var req positionRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	lat, lng, err := req.require()
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdatePositionCommand(agentID, lat, lng, req.AccuracyM)
	if err != nil {
		return err
	}
	update, err := s.handlers.UpdatePosition.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, positionResponse{
		Position:   update.Position,
		Confidence: update.Confidence,
		Zone:       update.Zone,
	})
}

// UpdateSearchRadius handles PUT /api/v1/agents/:agent_id/search-radius.
func (s *Server) UpdateSearchRadius(c echo.Context) error {
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}
	var req searchRadiusRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewUpdateSearchRadiusCommand(agentID, req.RadiusKm)
	if err != nil {
		return err
	}
	radius, err := s.handlers.UpdateSearchRadius.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchRadiusRequest{RadiusKm: radius})
}

// CheckZones handles POST /api/v1/agents/:agent_id/zones. Unlike a position
// update it stores nothing.
func (s *Server) CheckZones(c echo.Context) error {
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}
	var req positionRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	lat, lng, err := req.require()
	if err != nil {
		return err
	}

	query, err := queries.NewCheckZonesQuery(agentID, lat, lng, req.AccuracyM)
	if err != nil {
		return err
	}
	check, err := s.handlers.CheckZones.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, check)
}

// GetAgentStats handles GET /api/v1/agents/:agent_id/stats.
func (s *Server) GetAgentStats(c echo.Context) error {
	if s.handlers.GetAgentStats == nil {
		return errNotEnabled
	}
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}

	query, err := queries.NewGetAgentStatsQuery(agentID)
	if err != nil {
		return err
	}
	stats, err := s.handlers.GetAgentStats.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// DrainEvents handles GET /api/v1/agents/:agent_id/events for clients that
// poll instead of holding a socket.
func (s *Server) DrainEvents(c echo.Context) error {
	if s.opts.Events == nil {
		return errNotEnabled
	}
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}

	events := s.opts.Events.Drain(agentID)
	if events == nil {
		events = []ports.AgentEvent{}
	}
	return c.JSON(http.StatusOK, events)
}
