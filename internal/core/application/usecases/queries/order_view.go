// Package queries contains the game's read operations. Queries never change
// state; those over the repositories work in every storage mode, those over
// raw SQL need the postgres adapter.
package queries

import (
	"fmt"
	"strings"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
)

type PointView struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

func NewPointView(p kernel.GeoPoint) PointView {
	return PointView{Latitude: p.Latitude(), Longitude: p.Longitude()}
}

// OrderView is the agent-facing shape of an order.
type OrderView struct {
	ID                   kernel.UUID `json:"id"`
	Status               string      `json:"status"`
	PickupName           string      `json:"pickup_name"`
	Pickup               PointView   `json:"pickup"`
	DropoffAddress       string      `json:"dropoff_address"`
	Dropoff              PointView   `json:"dropoff"`
	DistanceKm           float64     `json:"distance_km"`
	TimerSeconds         int         `json:"timer_seconds"`
	Amount               float64     `json:"amount"`
	CancelReason         string      `json:"cancel_reason,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	PickupAt             *time.Time  `json:"pickup_at,omitempty"`
	DeliveredAt          *time.Time  `json:"delivered_at,omitempty"`
	ExpiresAt            time.Time   `json:"expires_at"`
	TimeRemainingSeconds int         `json:"time_remaining"`
	IsExpired            bool        `json:"is_expired"`
	EstimatedTime        string      `json:"estimated_time"`
}

func NewOrderView(o *order.Order, now time.Time) OrderView {
	return OrderView{
		ID:                   o.ID(),
		Status:               StatusName(o.Status()),
		PickupName:           o.PickupName(),
		Pickup:               NewPointView(o.PickupPoint()),
		DropoffAddress:       o.DropoffAddress(),
		Dropoff:              NewPointView(o.DropoffPoint()),
		DistanceKm:           o.DistanceKm(),
		TimerSeconds:         o.TimerSeconds(),
		Amount:               o.Amount(),
		CancelReason:         o.CancelReason(),
		CreatedAt:            o.CreatedAt(),
		PickupAt:             o.PickupAt(),
		DeliveredAt:          o.DeliveredAt(),
		ExpiresAt:            o.ExpiresAt(),
		TimeRemainingSeconds: o.TimeRemainingSeconds(now),
		IsExpired:            o.IsExpired(now),
		EstimatedTime:        FormatETA(o.TimerSeconds()),
	}
}

// StatusName is the lowercase wire name of a status.
func StatusName(s order.Status) string {
	return strings.ToLower(s.String())
}

// FormatETA renders a timer as "~25 min", "~1h 5m" or "~2h".
func FormatETA(timerSeconds int) string {
	minutes := timerSeconds / 60
	if minutes < 60 {
		return fmt.Sprintf("~%d min", minutes)
	}
	hours, rest := minutes/60, minutes%60
	if rest == 0 {
		return fmt.Sprintf("~%dh", hours)
	}
	return fmt.Sprintf("~%dh %dm", hours, rest)
}
