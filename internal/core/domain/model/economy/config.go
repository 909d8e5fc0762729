package economy

import (
	"errors"
	"math"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// Config is the game economy. Money is in game currency units, radii and GPS
// accuracy in meters, speed in km/h and durations in seconds.
type Config struct {
	BasePayment  float64 `json:"base_payment"`
	PickupFee    float64 `json:"pickup_fee"`
	DropoffFee   float64 `json:"dropoff_fee"`
	DistanceRate float64 `json:"distance_rate"`
	OnTimeBonus  float64 `json:"on_time_bonus"`

	PickupRadiusM  float64 `json:"pickup_radius_m"`
	DropoffRadiusM float64 `json:"dropoff_radius_m"`

	DeliverySpeedKmh    float64 `json:"delivery_speed_kmh"`
	DeliveryBaseTimeSec int     `json:"delivery_base_time_sec"`
	PickupTimeoutSec    int     `json:"pickup_timeout_sec"`

	MaxGpsAccuracyM float64 `json:"max_gps_accuracy_m"`
}

func DefaultConfig() Config {
	return Config{
		BasePayment:         1.50,
		PickupFee:           0.50,
		DropoffFee:          0.50,
		DistanceRate:        0.80,
		OnTimeBonus:         1.00,
		PickupRadiusM:       30,
		DropoffRadiusM:      30,
		DeliverySpeedKmh:    5,
		DeliveryBaseTimeSec: 300,
		PickupTimeoutSec:    3600,
		MaxGpsAccuracyM:     50,
	}
}

func (c Config) Validate() error {
	return errors.Join(
		nonNegative("base_payment", c.BasePayment),
		nonNegative("pickup_fee", c.PickupFee),
		nonNegative("dropoff_fee", c.DropoffFee),
		nonNegative("distance_rate", c.DistanceRate),
		nonNegative("on_time_bonus", c.OnTimeBonus),
		positive("pickup_radius_m", c.PickupRadiusM),
		positive("dropoff_radius_m", c.DropoffRadiusM),
		positive("delivery_speed_kmh", c.DeliverySpeedKmh),
		nonNegative("delivery_base_time_sec", float64(c.DeliveryBaseTimeSec)),
		positive("pickup_timeout_sec", float64(c.PickupTimeoutSec)),
		positive("max_gps_accuracy_m", c.MaxGpsAccuracyM),
	)
}

// BasePayout is the estimate shown when an order is offered: everything but the bonus.
func (c Config) BasePayout(distanceKm float64) float64 {
	return roundCents(c.BasePayment + c.PickupFee + c.DropoffFee + distanceKm*c.DistanceRate)
}

// FinalPayout is what the agent is credited on delivery.
func (c Config) FinalPayout(distanceKm float64, onTime bool) Payout {
	p := Payout{
		BasePayment:    c.BasePayment,
		PickupFee:      c.PickupFee,
		DropoffFee:     c.DropoffFee,
		DistanceAmount: roundCents(distanceKm * c.DistanceRate),
		OnTime:         onTime,
		DistanceKm:     distanceKm,
	}
	if onTime {
		p.BonusAmount = c.OnTimeBonus
	}
	p.Total = roundCents(c.BasePayment + c.PickupFee + c.DropoffFee + distanceKm*c.DistanceRate + p.BonusAmount)
	return p
}

// TimerSeconds is the nominal delivery budget: travel time at DeliverySpeedKmh plus DeliveryBaseTimeSec.
func (c Config) TimerSeconds(distanceKm float64) int {
	return int(math.Round(distanceKm/c.DeliverySpeedKmh*3600 + float64(c.DeliveryBaseTimeSec)))
}

func (c Config) PickupTimeout() time.Duration {
	return time.Duration(c.PickupTimeoutSec) * time.Second
}

// DeliveryStats previews an offer before it is accepted.
func (c Config) DeliveryStats(distanceKm float64) Stats {
	timer := c.TimerSeconds(distanceKm)
	return Stats{
		DistanceKm:       math.Round(distanceKm*100) / 100,
		BasePayout:       c.BasePayout(distanceKm),
		PayoutWithBonus:  roundCents(c.BasePayout(distanceKm) + c.OnTimeBonus),
		TimerSeconds:     timer,
		EstimatedMinutes: int(math.Round(float64(timer) / 60)),
	}
}

// Payout breaks the credited amount down by component.
type Payout struct {
	BasePayment    float64 `json:"base_payment"`
	PickupFee      float64 `json:"pickup_fee"`
	DropoffFee     float64 `json:"dropoff_fee"`
	DistanceAmount float64 `json:"distance_amount"`
	BonusAmount    float64 `json:"bonus_amount"`
	Total          float64 `json:"total"`
	OnTime         bool    `json:"on_time"`
	DistanceKm     float64 `json:"distance_km"`
}

type Stats struct {
	DistanceKm       float64 `json:"distance_km"`
	BasePayout       float64 `json:"base_payout"`
	PayoutWithBonus  float64 `json:"payout_with_bonus"`
	TimerSeconds     int     `json:"timer_seconds"`
	EstimatedMinutes int     `json:"estimated_minutes"`
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, errors.New("must not be negative"))
	}
	return nil
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, errors.New("must be positive"))
	}
	return nil
}
