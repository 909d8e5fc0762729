package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// DefaultCancelReason is recorded when a cancel arrives without a reason.
const DefaultCancelReason = "user_cancelled"

// DeliveryDeadlineFactor stretches the nominal timer once the parcel is picked up.
const DeliveryDeadlineFactor = 2

// ErrOrderIsNotConstructed is returned by Validate for an Order that did not come
// from NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

// Draft is a matched vendor/destination pair ready to become an order.
type Draft struct {
	AgentID        kernel.UUID
	PickupName     string
	Pickup         kernel.GeoPoint
	DropoffAddress string
	Dropoff        kernel.GeoPoint
	DistanceKm     float64
	TimerSeconds   int
	Amount         float64
}

// Settlement is what a delivery owes the agent. The caller credits it to the
// agent in the same transaction that saves the completed order.
type Settlement struct {
	AgentID kernel.UUID
	OrderID kernel.UUID
	Payout  economy.Payout
}

// Order is the aggregate root of a single delivery job. It is assigned to its
// agent at creation and only changes through Pickup, Deliver, Cancel and Expire.
type Order struct {
	id      kernel.UUID
	agentID kernel.UUID

	pickupName     string
	pickup         kernel.GeoPoint
	dropoffAddress string
	dropoff        kernel.GeoPoint

	distanceKm   float64
	timerSeconds int
	amount       float64

	status       Status
	cancelReason string

	createdAt   time.Time
	pickupAt    *time.Time
	deliveredAt *time.Time
	expiresAt   time.Time
	updatedAt   time.Time

	version int

	isConstructed bool
}

// NewOrder creates a Pending order whose pickup deadline is now + pickupTimeout.
//
// Parameters:
//   - id: identifier of the new order
//   - draft: the matched vendor, destination and economics
//   - now: creation instant, taken from the injected clock
//   - pickupTimeout: how long the agent has to reach the vendor (must be positive)
//
// Returns:
//   - *Order: the Pending order if every field is valid
//   - error: joined validation errors otherwise
//
// Example:
//
//	o, err := NewOrder(kernel.NewUUID(), match.Draft, clock.Now(), cfg.PickupTimeout())
//	if err != nil {
//	    return err
//	}
func NewOrder(id kernel.UUID, draft Draft, now time.Time, pickupTimeout time.Duration) (*Order, error) {
	o := &Order{
		status:        Pending,
		createdAt:     now,
		expiresAt:     now.Add(pickupTimeout),
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setAgentID(draft.AgentID),
		o.setPickup(draft.PickupName, draft.Pickup),
		o.setDropoff(draft.DropoffAddress, draft.Dropoff),
		o.setEconomics(draft.DistanceKm, draft.TimerSeconds, draft.Amount),
		positiveDuration("pickup timeout", pickupTimeout),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot is the full persisted state of an order.
type Snapshot struct {
	ID             kernel.UUID
	AgentID        kernel.UUID
	PickupName     string
	Pickup         kernel.GeoPoint
	DropoffAddress string
	Dropoff        kernel.GeoPoint
	DistanceKm     float64
	TimerSeconds   int
	Amount         float64
	Status         Status
	CancelReason   string
	CreatedAt      time.Time
	PickupAt       *time.Time
	DeliveredAt    *time.Time
	ExpiresAt      time.Time
	UpdatedAt      time.Time
	Version        int
}

// RestoreOrder rebuilds an order from storage and rejects state no sequence of
// transitions could have produced.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		status:        s.Status,
		cancelReason:  s.CancelReason,
		createdAt:     s.CreatedAt,
		pickupAt:      s.PickupAt,
		deliveredAt:   s.DeliveredAt,
		expiresAt:     s.ExpiresAt,
		updatedAt:     s.UpdatedAt,
		version:       s.Version,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setAgentID(s.AgentID),
		o.setPickup(s.PickupName, s.Pickup),
		o.setDropoff(s.DropoffAddress, s.Dropoff),
		o.setEconomics(s.DistanceKm, s.TimerSeconds, s.Amount),
		s.Status.Validate(),
		o.validateTimestamps(),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate reports ErrOrderIsNotConstructed for a nil or zero-value Order.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// Snapshot copies the full state for persistence. Pointer fields are cloned.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:             o.id,
		AgentID:        o.agentID,
		PickupName:     o.pickupName,
		Pickup:         o.pickup,
		DropoffAddress: o.dropoffAddress,
		Dropoff:        o.dropoff,
		DistanceKm:     o.distanceKm,
		TimerSeconds:   o.timerSeconds,
		Amount:         o.amount,
		Status:         o.status,
		CancelReason:   o.cancelReason,
		CreatedAt:      o.createdAt,
		PickupAt:       copyTime(o.pickupAt),
		DeliveredAt:    copyTime(o.deliveredAt),
		ExpiresAt:      o.expiresAt,
		UpdatedAt:      o.updatedAt,
		Version:        o.version,
	}
}

// ID returns the order identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// AgentID returns the agent the order was created for.
func (o *Order) AgentID() kernel.UUID {
	return o.agentID
}

// PickupName returns the vendor name.
func (o *Order) PickupName() string {
	return o.pickupName
}

// PickupPoint returns the vendor location.
func (o *Order) PickupPoint() kernel.GeoPoint {
	return o.pickup
}

// DropoffAddress returns the destination street address.
func (o *Order) DropoffAddress() string {
	return o.dropoffAddress
}

// DropoffPoint returns the destination location.
func (o *Order) DropoffPoint() kernel.GeoPoint {
	return o.dropoff
}

// DistanceKm is the vendor to destination distance the payout is based on.
func (o *Order) DistanceKm() float64 {
	return o.distanceKm
}

// TimerSeconds is the nominal delivery time used for the on-time check.
func (o *Order) TimerSeconds() int {
	return o.timerSeconds
}

// Amount is the base estimate while open and the final payout once Completed.
func (o *Order) Amount() float64 {
	return o.amount
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// CancelReason is empty unless the order was cancelled.
func (o *Order) CancelReason() string {
	return o.cancelReason
}

// CreatedAt returns the creation instant.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// PickupAt is nil until the agent picks the order up.
func (o *Order) PickupAt() *time.Time {
	return copyTime(o.pickupAt)
}

// DeliveredAt is nil until the order is delivered.
func (o *Order) DeliveredAt() *time.Time {
	return copyTime(o.deliveredAt)
}

// ExpiresAt is the pickup deadline.
func (o *Order) ExpiresAt() time.Time {
	return o.expiresAt
}

// UpdatedAt is the instant of the last transition.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Version is the optimistic concurrency version the order was loaded with.
func (o *Order) Version() int {
	return o.version
}

// IsPickedUp reports whether a pickup was recorded.
func (o *Order) IsPickedUp() bool {
	return o.pickupAt != nil
}

// IsDelivered reports whether a delivery was recorded.
func (o *Order) IsDelivered() bool {
	return o.deliveredAt != nil
}

// Timer returns TimerSeconds as a duration.
func (o *Order) Timer() time.Duration {
	return time.Duration(o.timerSeconds) * time.Second
}

// Deadline is the instant TimeRemaining counts down to: expiresAt until pickup,
// then pickupAt + DeliveryDeadlineFactor * timer.
func (o *Order) Deadline() time.Time {
	if o.pickupAt == nil {
		return o.expiresAt
	}
	return o.pickupAt.Add(DeliveryDeadlineFactor * o.Timer())
}

// TimeRemaining is zero for terminal orders and never negative.
func (o *Order) TimeRemaining(now time.Time) time.Duration {
	if o.status.IsTerminal() {
		return 0
	}
	remaining := o.Deadline().Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TimeRemainingSeconds truncates TimeRemaining to whole seconds.
func (o *Order) TimeRemainingSeconds(now time.Time) int {
	return int(o.TimeRemaining(now) / time.Second)
}

// IsExpired reports that no time remains and the order was neither completed nor
// cancelled. Already Expired orders report true.
func (o *Order) IsExpired(now time.Time) bool {
	return o.TimeRemaining(now) == 0 && o.status != Completed && o.status != Cancelled
}

// Pickup marks the parcel as collected and moves the order to Active.
//
// Errors are checked in this order: ErrAlreadyPickedUp, ErrNotPending, then
// ErrExpired once the pickup deadline has passed. A failed pickup changes
// nothing.
func (o *Order) Pickup(now time.Time) error {
	if o.pickupAt != nil {
		return ErrAlreadyPickedUp
	}
	if o.status != Pending {
		return ErrNotPending
	}
	if !now.Before(o.expiresAt) {
		return ErrExpired
	}

	newStatus, err := o.status.Pickup()
	if err != nil {
		return err
	}

	pickedAt := now
	o.pickupAt = &pickedAt
	o.status = newStatus
	o.updatedAt = now
	return nil
}

// Deliver completes the order and returns the settlement owed to the agent.
// The delivery deadline is not enforced here: a late delivery still completes,
// it only loses the on-time bonus. Overdue orders are closed by Expire.
func (o *Order) Deliver(now time.Time, cfg economy.Config) (Settlement, error) {
	if o.deliveredAt != nil {
		return Settlement{}, ErrAlreadyDelivered
	}

	newStatus, err := o.status.Deliver()
	if err != nil {
		return Settlement{}, err
	}
	if o.pickupAt == nil {
		return Settlement{}, ErrNotPickedUp
	}

	onTime := now.Sub(*o.pickupAt) <= o.Timer()
	payout := cfg.FinalPayout(o.distanceKm, onTime)

	deliveredAt := now
	o.deliveredAt = &deliveredAt
	o.status = newStatus
	o.amount = payout.Total
	o.updatedAt = now

	return Settlement{AgentID: o.agentID, OrderID: o.id, Payout: payout}, nil
}

// Cancel closes the order with reason, or DefaultCancelReason when reason is
// blank. Pending, Active and Expired orders can be cancelled; Completed and
// Cancelled ones fail with ErrAlreadyTerminal.
func (o *Order) Cancel(reason string, now time.Time) error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCancelReason
	}

	o.status = newStatus
	o.cancelReason = reason
	o.updatedAt = now
	return nil
}

// Expire closes an overdue order. It reports false without error when the
// order already reached a terminal status, and ErrNotDue while time remains.
func (o *Order) Expire(now time.Time) (bool, error) {
	if o.status.IsTerminal() {
		return false, nil
	}
	if o.TimeRemaining(now) > 0 {
		return false, ErrNotDue
	}

	newStatus, err := o.status.Expire()
	if err != nil {
		return false, err
	}

	o.status = newStatus
	o.updatedAt = now
	return true, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("agent id", err)
	}
	o.agentID = agentID
	return nil
}

func (o *Order) setPickup(name string, point kernel.GeoPoint) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("pickup name")
	}
	if err := point.Validate(); err != nil {
		return err
	}
	o.pickupName = name
	o.pickup = point
	return nil
}

func (o *Order) setDropoff(address string, point kernel.GeoPoint) error {
	if strings.TrimSpace(address) == "" {
		return errs.NewValueIsRequiredError("dropoff address")
	}
	if err := point.Validate(); err != nil {
		return err
	}
	o.dropoffAddress = address
	o.dropoff = point
	return nil
}

func (o *Order) setEconomics(distanceKm float64, timerSeconds int, amount float64) error {
	var result []error
	if math.IsNaN(distanceKm) || distanceKm < 0 {
		result = append(result, errs.NewValueIsInvalidErrorWithCause("distance km", fmt.Errorf("%v is negative", distanceKm)))
	}
	if timerSeconds <= 0 {
		result = append(result, errs.NewValueIsInvalidErrorWithCause("timer seconds", fmt.Errorf("%d is not greater than 0", timerSeconds)))
	}
	if math.IsNaN(amount) || amount < 0 {
		result = append(result, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%v is negative", amount)))
	}
	if err := errors.Join(result...); err != nil {
		return err
	}

	o.distanceKm = distanceKm
	o.timerSeconds = timerSeconds
	o.amount = amount
	return nil
}

func (o *Order) validateTimestamps() error {
	switch {
	case o.deliveredAt != nil && o.status != Completed:
		return errs.NewValueIsInvalidErrorWithCause("delivered at", fmt.Errorf("set while status is %s", o.status))
	case o.status == Completed && (o.pickupAt == nil || o.deliveredAt == nil):
		return errs.NewValueIsInvalidErrorWithCause("status", errors.New("completed order without pickup and delivery times"))
	case o.pickupAt != nil && o.status == Pending:
		return errs.NewValueIsInvalidErrorWithCause("pickup at", errors.New("set while status is Pending"))
	case o.status == Cancelled && o.cancelReason == "":
		return errs.NewValueIsRequiredError("cancel reason")
	}
	return nil
}

func positiveDuration(name string, d time.Duration) error {
	if d <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is not greater than 0", d))
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
