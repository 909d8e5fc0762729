// Package agentrepo maps the agent aggregate to the agents table.
package agentrepo

import (
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/agent"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type AgentDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"not null"`
	RegionID        string    `gorm:"not null"`
	LastLat         *float64
	LastLng         *float64
	LastPositionAt  *time.Time
	SearchRadiusKm  float64 `gorm:"not null"`
	Balance         float64 `gorm:"not null;default:0"`
	TotalDeliveries int     `gorm:"not null;default:0"`
	Version         int     `gorm:"not null;default:0"`
}

func (AgentDTO) TableName() string {
	return "agents"
}

func fromDomain(a *agent.Agent) AgentDTO {
	s := a.Snapshot()
	dto := AgentDTO{
		ID:              s.ID.Bytes(),
		Name:            s.Name,
		RegionID:        s.RegionID,
		SearchRadiusKm:  s.SearchRadiusKm,
		Balance:         s.Balance,
		TotalDeliveries: s.TotalDeliveries,
		Version:         s.Version,
	}
	if s.LastPosition != nil {
		lat, lng := s.LastPosition.Latitude(), s.LastPosition.Longitude()
		dto.LastLat, dto.LastLng = &lat, &lng
	}
	if s.LastPositionAt != nil {
		at := s.LastPositionAt.UTC()
		dto.LastPositionAt = &at
	}
	return dto
}

func toDomain(dto AgentDTO) (*agent.Agent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var position *kernel.GeoPoint
	if dto.LastLat != nil && dto.LastLng != nil {
		p, posErr := kernel.NewGeoPoint(*dto.LastLat, *dto.LastLng)
		if posErr != nil {
			return nil, posErr
		}
		position = &p
	}

	var positionAt *time.Time
	if dto.LastPositionAt != nil {
		at := dto.LastPositionAt.UTC()
		positionAt = &at
	}

	return agent.RestoreAgent(agent.Snapshot{
		ID:              id,
		Name:            dto.Name,
		RegionID:        dto.RegionID,
		LastPosition:    position,
		LastPositionAt:  positionAt,
		SearchRadiusKm:  dto.SearchRadiusKm,
		Balance:         dto.Balance,
		TotalDeliveries: dto.TotalDeliveries,
		Version:         dto.Version,
	})
}
