package http

import (
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

type positionRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
	AccuracyM float64  `json:"accuracy"`
}

func (r positionRequest) present() bool {
	return r.Latitude != nil && r.Longitude != nil
}

func (r positionRequest) require() (lat, lng float64, err error) {
	if !r.present() {
		return 0, 0, errs.NewValueIsRequiredError("lat/lng")
	}
	return *r.Latitude, *r.Longitude, nil
}

// sample is nil when the request carries no fix.
func (r positionRequest) sample() (*commands.PositionSample, error) {
	if !r.present() {
		return nil, nil
	}
	return commands.NewPositionSample(*r.Latitude, *r.Longitude, r.AccuracyM)
}

type createAgentRequest struct {
	Name           string  `json:"name"`
	RegionID       string  `json:"region_id"`
	SearchRadiusKm float64 `json:"search_radius_km"`
	positionRequest
}

type searchRadiusRequest struct {
	RadiusKm float64 `json:"radius_km"`
}

type startSearchRequest struct {
	RadiusKm float64 `json:"radius_km"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return nil
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func agentAndOrder(c echo.Context) (agentID, orderID kernel.UUID, err error) {
	if agentID, err = pathUUID(c, "agent_id"); err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	if orderID, err = pathUUID(c, "order_id"); err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return agentID, orderID, nil
}
