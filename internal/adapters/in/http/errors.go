package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/search"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/queries"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var errNotEnabled = errors.New("not enabled in this deployment")

// Error is the body of every failed response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var statusByError = []struct {
	err    error
	status int
}{
	{errs.ErrValueIsRequired, http.StatusBadRequest},
	{errs.ErrValueIsInvalid, http.StatusBadRequest},
	{errs.ErrValueIsOutOfRange, http.StatusBadRequest},

	{errs.ErrObjectNotFound, http.StatusNotFound},
	{queries.ErrNoActiveOrder, http.StatusNotFound},
	{ports.ErrRegionNotFound, http.StatusNotFound},

	{commands.ErrOrderNotOwned, http.StatusForbidden},

	{ports.ErrAgentHasActiveOrder, http.StatusConflict},
	{search.ErrAlreadySearching, http.StatusConflict},
	{search.ErrNotSearching, http.StatusConflict},
	{order.ErrAlreadyPickedUp, http.StatusConflict},
	{order.ErrNotPending, http.StatusConflict},
	{order.ErrNotActive, http.StatusConflict},
	{order.ErrNotPickedUp, http.StatusConflict},
	{order.ErrAlreadyDelivered, http.StatusConflict},
	{order.ErrAlreadyTerminal, http.StatusConflict},
	{errs.ErrVersionIsInvalid, http.StatusConflict},

	{order.ErrExpired, http.StatusGone},

	{commands.ErrNotInPickupZone, http.StatusUnprocessableEntity},
	{commands.ErrNotInDropoffZone, http.StatusUnprocessableEntity},
	{commands.ErrPositionTooInaccurate, http.StatusUnprocessableEntity},
	{agent.ErrNoPosition, http.StatusUnprocessableEntity},

	{errNotEnabled, http.StatusNotImplemented},
	{search.ErrRegistryClosed, http.StatusServiceUnavailable},
	{context.Canceled, http.StatusServiceUnavailable},
}

// StatusOf maps a use case error onto an HTTP status.
func StatusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := StatusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		message = http.StatusText(status)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, Error{Code: status, Message: message})
	}
	if err != nil {
		s.logger.WarnContext(c.Request().Context(), "error response not written", "error", err)
	}
}
