package order

import (
	"errors"
	"fmt"

	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// Status is a step of the order lifecycle:
//
//	Pending -> Active -> Completed
//	Pending | Active -> Cancelled
//	Pending | Active -> Expired
type Status int

const (
	Unknown Status = iota
	Pending
	Active
	Completed
	Cancelled
	Expired
)

var (
	ErrAlreadyPickedUp  = errors.New("order is already picked up")
	ErrNotPending       = errors.New("order is not pending")
	ErrExpired          = errors.New("order is expired")
	ErrNotActive        = errors.New("order is not active")
	ErrNotPickedUp      = errors.New("order is not picked up")
	ErrAlreadyDelivered = errors.New("order is already delivered")
	ErrAlreadyTerminal  = errors.New("order is already in a terminal status")
	ErrNotDue           = errors.New("order deadline has not passed")
)

var statusNames = map[Status]string{
	Unknown:   "Unknown",
	Pending:   "Pending",
	Active:    "Active",
	Completed: "Completed",
	Cancelled: "Cancelled",
	Expired:   "Expired",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled || s == Expired
}

// IsOpen reports Pending or Active, the statuses that count against the one-order-per-agent rule.
func (s Status) IsOpen() bool {
	return s == Pending || s == Active
}

// Pickup moves Pending to Active.
func (s Status) Pickup() (Status, error) {
	if s != Pending {
		return s, ErrNotPending
	}
	return Active, nil
}

// Deliver moves Active to Completed. Completed reports ErrAlreadyDelivered and
// Expired wraps both ErrNotActive and ErrExpired.
func (s Status) Deliver() (Status, error) {
	switch s {
	case Active:
		return Completed, nil
	case Completed:
		return s, ErrAlreadyDelivered
	case Expired:
		return s, fmt.Errorf("%w: %w", ErrNotActive, ErrExpired)
	default:
		return s, ErrNotActive
	}
}

// Cancel is allowed from every status except Completed and Cancelled, so an
// Expired order can still be closed with a reason.
func (s Status) Cancel() (Status, error) {
	if s == Completed || s == Cancelled {
		return s, ErrAlreadyTerminal
	}
	return Cancelled, nil
}

// Expire moves an open status to Expired.
func (s Status) Expire() (Status, error) {
	if !s.IsOpen() {
		return s, ErrAlreadyTerminal
	}
	return Expired, nil
}
