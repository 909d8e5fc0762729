package http

import (
	"net/http"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"

	"github.com/labstack/echo/v4"
)

type regionsResponse struct {
	Regions []string `json:"regions"`
}

// GetRegions handles GET /api/v1/regions.
func (s *Server) GetRegions(c echo.Context) error {
	if s.opts.Regions == nil {
		return errNotEnabled
	}
	regions, err := s.opts.Regions.Regions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, regionsResponse{Regions: regions})
}

// GetEconomy handles GET /api/v1/economy.
func (s *Server) GetEconomy(c echo.Context) error {
	return c.JSON(http.StatusOK, s.economy.Load())
}

// ReplaceEconomy handles PUT /api/v1/economy. The body replaces the whole
// config; operations already running keep the values they loaded.
func (s *Server) ReplaceEconomy(c echo.Context) error {
	var cfg economy.Config
	if err := bind(c, &cfg); err != nil {
		return err
	}
	if err := s.economy.Store(cfg); err != nil {
		return err
	}

	s.logger.InfoContext(c.Request().Context(), "economy config replaced", "config", cfg)
	return c.JSON(http.StatusOK, s.economy.Load())
}
