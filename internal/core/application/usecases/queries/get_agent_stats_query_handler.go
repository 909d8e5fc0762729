package queries

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetAgentStatsQueryHandler joins the agents and orders tables.
type GetAgentStatsQueryHandler struct {
	db *gorm.DB
}

// NewGetAgentStatsQueryHandler creates a handler that reads db directly.
func NewGetAgentStatsQueryHandler(db *gorm.DB) GetAgentStatsQueryHandler {
	return GetAgentStatsQueryHandler{db: db}
}

// Handle returns the agent's balance and order counts per status.
func (h GetAgentStatsQueryHandler) Handle(
	ctx context.Context,
	query GetAgentStatsQuery,
) (GetAgentStatsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetAgentStatsQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			a.name,
			a.balance,
			a.total_deliveries,
			COUNT(o.id) FILTER (WHERE o.status = ?),
			COUNT(o.id) FILTER (WHERE o.status = ?),
			COUNT(o.id) FILTER (WHERE o.status = ?),
			COALESCE(SUM(o.amount) FILTER (WHERE o.status = ?), 0)
		FROM agents a
		LEFT JOIN orders o ON o.agent_id = a.id
		WHERE a.id = ?
		GROUP BY a.id
	`, order.Completed, order.Cancelled, order.Expired, order.Completed, query.AgentID().String()).Row()

	resp := GetAgentStatsQueryResponse{AgentID: query.AgentID()}
	err := row.Scan(
		&resp.Name,
		&resp.Balance,
		&resp.TotalDeliveries,
		&resp.CompletedOrders,
		&resp.CancelledOrders,
		&resp.ExpiredOrders,
		&resp.TotalEarnings,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetAgentStatsQueryResponse{}, errs.NewObjectNotFoundError("agent", query.AgentID())
	}
	if err != nil {
		return GetAgentStatsQueryResponse{}, err
	}

	if resp.CompletedOrders > 0 {
		resp.AveragePayout = math.Round(resp.TotalEarnings/float64(resp.CompletedOrders)*100) / 100
	}

	return resp, nil
}
