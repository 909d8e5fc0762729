package http

import (
	"net/http"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/search"

	"github.com/labstack/echo/v4"
)

type searchStatus struct {
	State      search.State `json:"state"`
	TotalTicks int          `json:"total_ticks,omitempty"`
}

// StartSearch handles POST /api/v1/agents/:agent_id/search. The search keeps
// running after the response; progress and the result arrive as events.
func (s *Server) StartSearch(c echo.Context) error {
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}
	var req startSearchRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	session, err := s.searches.Start(c.Request().Context(), agentID, req.RadiusKm)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, searchStatus{State: search.Searching, TotalTicks: session.TotalTicks()})
}

// GetSearchStatus handles GET /api/v1/agents/:agent_id/search.
func (s *Server) GetSearchStatus(c echo.Context) error {
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchStatus{State: s.searches.Status(agentID)})
}

// StopSearch handles DELETE /api/v1/agents/:agent_id/search.
func (s *Server) StopSearch(c echo.Context) error {
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}
	if err = s.searches.Stop(agentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
