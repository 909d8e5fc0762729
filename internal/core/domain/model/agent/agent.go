package agent

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

var (
	ErrAgentIsNotConstructed = errors.New("Agent must be created via NewAgent or RestoreAgent constructor")
	ErrSettlementForAnother  = errors.New("settlement belongs to another agent")
	ErrNoPosition            = errors.New("agent has not reported a position yet")
)

// RadiusBounds limits the search radius an agent may choose, in km.
type RadiusBounds struct {
	MinKm float64
	MaxKm float64
}

// DefaultRadiusBounds allows a search radius from 1 to 25 km.
func DefaultRadiusBounds() RadiusBounds {
	return RadiusBounds{MinKm: 1, MaxKm: 25}
}

// Validate requires 0 < MinKm <= MaxKm.
func (b RadiusBounds) Validate() error {
	if b.MinKm <= 0 || b.MaxKm < b.MinKm {
		return errs.NewValueIsInvalidErrorWithCause("radius bounds", fmt.Errorf("[%v, %v] is not a valid range", b.MinKm, b.MaxKm))
	}
	return nil
}

func (b RadiusBounds) check(km float64) error {
	if math.IsNaN(km) || km < b.MinKm || km > b.MaxKm {
		return errs.NewValueIsOutOfRangeError("search radius km", km, b.MinKm, b.MaxKm)
	}
	return nil
}

// Agent is a player as the game core sees them: where they were last seen,
// how far they are willing to travel, and what they have earned. Balance and
// delivery count only change through ApplySettlement.
type Agent struct {
	id       kernel.UUID
	name     string
	regionID string

	lastPosition   *kernel.GeoPoint
	lastPositionAt *time.Time
	searchRadiusKm float64

	balance         float64
	totalDeliveries int

	version int

	isConstructed bool
}

// NewAgent registers a player with no position and a zero balance.
//
// Parameters:
//   - id: identifier of the agent, usually issued by the auth layer
//   - name: display name (required)
//   - regionID: catalog region the agent plays in (required)
//   - searchRadiusKm: initial search radius, checked against bounds
//   - bounds: the radius limits currently configured
//
// Returns:
//   - *Agent: the new agent if every field is valid
//   - error: joined validation errors otherwise
func NewAgent(id kernel.UUID, name, regionID string, searchRadiusKm float64, bounds RadiusBounds) (*Agent, error) {
	a := &Agent{isConstructed: true}

	if err := errors.Join(
		a.setID(id),
		a.setName(name),
		a.setRegion(regionID),
		a.setSearchRadius(searchRadiusKm, bounds),
	); err != nil {
		return nil, err
	}
	return a, nil
}

// Snapshot is the full persisted state of an agent.
type Snapshot struct {
	ID              kernel.UUID
	Name            string
	RegionID        string
	LastPosition    *kernel.GeoPoint
	LastPositionAt  *time.Time
	SearchRadiusKm  float64
	Balance         float64
	TotalDeliveries int
	Version         int
}

// RestoreAgent rebuilds an agent from storage. The radius is not re-checked
// against bounds, which may have been narrowed after it was chosen.
func RestoreAgent(s Snapshot) (*Agent, error) {
	a := &Agent{
		lastPosition:    s.LastPosition,
		lastPositionAt:  s.LastPositionAt,
		balance:         s.Balance,
		totalDeliveries: s.TotalDeliveries,
		version:         s.Version,
		isConstructed:   true,
	}

	var restoreErrs []error
	if s.SearchRadiusKm <= 0 {
		restoreErrs = append(restoreErrs, errs.NewValueIsInvalidError("search radius km"))
	}
	if s.TotalDeliveries < 0 {
		restoreErrs = append(restoreErrs, errs.NewValueIsInvalidError("total deliveries"))
	}
	if (s.LastPosition == nil) != (s.LastPositionAt == nil) {
		restoreErrs = append(restoreErrs, errs.NewValueIsInvalidError("last position"))
	}
	a.searchRadiusKm = s.SearchRadiusKm

	if err := errors.Join(append(restoreErrs, a.setID(s.ID), a.setName(s.Name), a.setRegion(s.RegionID))...); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate reports ErrAgentIsNotConstructed for a nil or zero-value Agent.
func (a *Agent) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAgentIsNotConstructed
	}
	return nil
}

// Snapshot copies the full state for persistence.
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		ID:              a.id,
		Name:            a.name,
		RegionID:        a.regionID,
		LastPosition:    a.lastPosition,
		LastPositionAt:  a.lastPositionAt,
		SearchRadiusKm:  a.searchRadiusKm,
		Balance:         a.balance,
		TotalDeliveries: a.totalDeliveries,
		Version:         a.version,
	}
}

// ID returns the agent identifier.
func (a *Agent) ID() kernel.UUID {
	return a.id
}

// Name returns the display name.
func (a *Agent) Name() string {
	return a.name
}

// RegionID returns the region searches default to.
func (a *Agent) RegionID() string {
	return a.regionID
}

// SearchRadiusKm returns the radius searches default to.
func (a *Agent) SearchRadiusKm() float64 {
	return a.searchRadiusKm
}

// Balance is the sum of every payout credited so far.
func (a *Agent) Balance() float64 {
	return a.balance
}

// TotalDeliveries counts completed orders.
func (a *Agent) TotalDeliveries() int {
	return a.totalDeliveries
}

// Version is the optimistic concurrency version the agent was loaded with.
func (a *Agent) Version() int {
	return a.version
}

// LastPosition returns the last reported position or ErrNoPosition.
func (a *Agent) LastPosition() (kernel.GeoPoint, error) {
	if a.lastPosition == nil {
		return kernel.GeoPoint{}, ErrNoPosition
	}
	return *a.lastPosition, nil
}

// LastPositionAt is nil until the first position update.
func (a *Agent) LastPositionAt() *time.Time {
	return a.lastPositionAt
}

// UpdatePosition records a GPS sample. Samples are last-write-wins.
func (a *Agent) UpdatePosition(p kernel.GeoPoint, at time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	a.lastPosition = &p
	a.lastPositionAt = &at
	return nil
}

// SetSearchRadius changes the default search radius within bounds.
func (a *Agent) SetSearchRadius(km float64, bounds RadiusBounds) error {
	return a.setSearchRadius(km, bounds)
}

// ApplySettlement credits a delivered order's payout and counts the delivery.
func (a *Agent) ApplySettlement(s order.Settlement) error {
	if !s.AgentID.IsEqual(a.id) {
		return ErrSettlementForAnother
	}
	if math.IsNaN(s.Payout.Total) || s.Payout.Total < 0 {
		return errs.NewValueIsInvalidErrorWithCause("payout", fmt.Errorf("%v is negative", s.Payout.Total))
	}

	a.balance = math.Round((a.balance+s.Payout.Total)*100) / 100
	a.totalDeliveries++
	return nil
}

func (a *Agent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Agent) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	a.name = name
	return nil
}

func (a *Agent) setRegion(regionID string) error {
	if strings.TrimSpace(regionID) == "" {
		return errs.NewValueIsRequiredError("region")
	}
	a.regionID = regionID
	return nil
}

func (a *Agent) setSearchRadius(km float64, bounds RadiusBounds) error {
	if err := bounds.Validate(); err != nil {
		return err
	}
	if err := bounds.check(km); err != nil {
		return err
	}
	a.searchRadiusKm = km
	return nil
}
