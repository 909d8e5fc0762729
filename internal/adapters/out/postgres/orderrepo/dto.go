// Package orderrepo maps the order aggregate to the orders table.
package orderrepo

import (
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is one row of the orders table. Version is bumped by every update
// and compared on write.
type OrderDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentID        uuid.UUID `gorm:"type:uuid;not null;index"`
	PickupName     string    `gorm:"not null"`
	Pickup         PointDTO  `gorm:"embedded;embeddedPrefix:pickup_"`
	DropoffAddress string    `gorm:"not null"`
	Dropoff        PointDTO  `gorm:"embedded;embeddedPrefix:dropoff_"`
	DistanceKm     float64
	TimerSeconds   int
	Amount         float64
	Status         int `gorm:"not null;index"`
	CancelReason   string
	CreatedAt      time.Time `gorm:"not null"`
	PickupAt       *time.Time
	DeliveredAt    *time.Time
	ExpiresAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
	Version        int       `gorm:"not null;default:0"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type PointDTO struct {
	Lat float64 `gorm:"not null"`
	Lng float64 `gorm:"not null"`
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	return OrderDTO{
		ID:             s.ID.Bytes(),
		AgentID:        s.AgentID.Bytes(),
		PickupName:     s.PickupName,
		Pickup:         PointDTO{Lat: s.Pickup.Latitude(), Lng: s.Pickup.Longitude()},
		DropoffAddress: s.DropoffAddress,
		Dropoff:        PointDTO{Lat: s.Dropoff.Latitude(), Lng: s.Dropoff.Longitude()},
		DistanceKm:     s.DistanceKm,
		TimerSeconds:   s.TimerSeconds,
		Amount:         s.Amount,
		Status:         int(s.Status),
		CancelReason:   s.CancelReason,
		CreatedAt:      s.CreatedAt.UTC(),
		PickupAt:       utc(s.PickupAt),
		DeliveredAt:    utc(s.DeliveredAt),
		ExpiresAt:      s.ExpiresAt.UTC(),
		UpdatedAt:      s.UpdatedAt.UTC(),
		Version:        s.Version,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	agentID, err := kernel.UUIDFromBytes(dto.AgentID[:])
	if err != nil {
		return nil, err
	}
	pickup, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}
	dropoff, err := kernel.NewGeoPoint(dto.Dropoff.Lat, dto.Dropoff.Lng)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:             id,
		AgentID:        agentID,
		PickupName:     dto.PickupName,
		Pickup:         pickup,
		DropoffAddress: dto.DropoffAddress,
		Dropoff:        dropoff,
		DistanceKm:     dto.DistanceKm,
		TimerSeconds:   dto.TimerSeconds,
		Amount:         dto.Amount,
		Status:         order.Status(dto.Status),
		CancelReason:   dto.CancelReason,
		CreatedAt:      dto.CreatedAt.UTC(),
		PickupAt:       utc(dto.PickupAt),
		DeliveredAt:    utc(dto.DeliveredAt),
		ExpiresAt:      dto.ExpiresAt.UTC(),
		UpdatedAt:      dto.UpdatedAt.UTC(),
		Version:        dto.Version,
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
