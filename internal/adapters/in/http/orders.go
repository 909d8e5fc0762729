package http

import (
	"net/http"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/queries"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"

	"github.com/labstack/echo/v4"
)

type deliveryResponse struct {
	Order           queries.OrderView `json:"order"`
	Payout          economy.Payout    `json:"payout"`
	Balance         float64           `json:"balance"`
	TotalDeliveries int               `json:"total_deliveries"`
}

// GetActiveOrder handles GET /api/v1/agents/:agent_id/order.
func (s *Server) GetActiveOrder(c echo.Context) error {
	agentID, err := pathUUID(c, "agent_id")
	if err != nil {
		return err
	}

	query, err := queries.NewGetActiveOrderQuery(agentID)
	if err != nil {
		return err
	}
	view, err := s.handlers.GetActiveOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// PickupOrder handles POST /api/v1/agents/:agent_id/orders/:order_id/pickup.
// A fix in the body is checked against the pickup geofence.
func (s *Server) PickupOrder(c echo.Context) error {
	agentID, orderID, err := agentAndOrder(c)
	if err != nil {
		return err
	}
	var req positionRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	sample, err := req.sample()
	if err != nil {
		return err
	}

	cmd, err := commands.NewPickupOrderCommand(agentID, orderID, sample)
	if err != nil {
		return err
	}
	o, err := s.handlers.PickupOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, queries.NewOrderView(o, s.clock.Now()))
}

// DeliverOrder handles POST /api/v1/agents/:agent_id/orders/:order_id/deliver.
func (s *Server) DeliverOrder(c echo.Context) error {
	agentID, orderID, err := agentAndOrder(c)
	if err != nil {
		return err
	}
	var req positionRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	sample, err := req.sample()
	if err != nil {
		return err
	}

	cmd, err := commands.NewDeliverOrderCommand(agentID, orderID, sample)
	if err != nil {
		return err
	}
	delivery, err := s.handlers.DeliverOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deliveryResponse{
		Order:           queries.NewOrderView(delivery.Order, s.clock.Now()),
		Payout:          delivery.Payout,
		Balance:         delivery.Balance,
		TotalDeliveries: delivery.TotalDeliveries,
	})
}

// CancelOrder handles POST /api/v1/agents/:agent_id/orders/:order_id/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	agentID, orderID, err := agentAndOrder(c)
	if err != nil {
		return err
	}
	var req cancelRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCancelOrderCommand(agentID, orderID, req.Reason)
	if err != nil {
		return err
	}
	o, err := s.handlers.CancelOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, queries.NewOrderView(o, s.clock.Now()))
}

// GetOpenOrders handles GET /api/v1/orders/open.
func (s *Server) GetOpenOrders(c echo.Context) error {
	if s.handlers.GetOpenOrders == nil {
		return errNotEnabled
	}

	orders, err := s.handlers.GetOpenOrders.Handle(c.Request().Context(), queries.NewGetOpenOrdersQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}
