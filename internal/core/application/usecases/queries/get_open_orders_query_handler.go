package queries

import (
	"context"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOpenOrdersQueryHandler reads the orders table directly.
type GetOpenOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetOpenOrdersQueryHandler creates a handler that reads db directly.
func NewGetOpenOrdersQueryHandler(db *gorm.DB) GetOpenOrdersQueryHandler {
	return GetOpenOrdersQueryHandler{db: db}
}

// Handle lists every Pending and Active order, oldest first.
func (h GetOpenOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetOpenOrdersQuery,
) ([]GetOpenOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetOpenOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			agent_id,
			status,
			pickup_name,
			dropoff_address,
			amount,
			created_at,
			expires_at
		FROM orders
		WHERE status IN (?, ?)
		ORDER BY created_at, id
	`, order.Pending, order.Active).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetOpenOrdersQueryResponse
		var id, agentID uuid.UUID
		var status int
		var createdAt, expiresAt time.Time

		err = rows.Scan(
			&id,
			&agentID,
			&status,
			&resp.PickupName,
			&resp.DropoffAddress,
			&resp.Amount,
			&createdAt,
			&expiresAt,
		)
		if err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.AgentID, err = kernel.UUIDFromBytes(agentID[:]); err != nil {
			return nil, err
		}
		resp.Status = StatusName(order.Status(status))
		resp.CreatedAt = createdAt.UTC()
		resp.ExpiresAt = expiresAt.UTC()
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
