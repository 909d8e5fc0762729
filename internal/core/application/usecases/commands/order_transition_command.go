package commands

import (
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var (
	ErrPickupOrderCommandIsNotConstructed = errors.New(
		"PickupOrderCommand must be created via NewPickupOrderCommand constructor",
	)
	ErrDeliverOrderCommandIsNotConstructed = errors.New(
		"DeliverOrderCommand must be created via NewDeliverOrderCommand constructor",
	)
	ErrCancelOrderCommandIsNotConstructed = errors.New(
		"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
	)
)

// orderRef names one order of one agent. Handlers reject orders that belong to
// somebody else with ErrOrderNotOwned.
type orderRef struct {
	agentID kernel.UUID
	orderID kernel.UUID
}

func newOrderRef(agentID, orderID kernel.UUID) (orderRef, error) {
	if err := errors.Join(agentID.Validate(), orderID.Validate()); err != nil {
		return orderRef{}, err
	}
	return orderRef{agentID: agentID, orderID: orderID}, nil
}

func (r orderRef) AgentID() kernel.UUID {
	return r.agentID
}

func (r orderRef) OrderID() kernel.UUID {
	return r.orderID
}

type PickupOrderCommand struct { //nolint:recvcheck //using for validation
	orderRef
	sample *PositionSample

	guard guard.ConstructorGuard
}

// NewPickupOrderCommand accepts a nil sample when the client has already
// checked the zone.
func NewPickupOrderCommand(agentID, orderID kernel.UUID, sample *PositionSample) (PickupOrderCommand, error) {
	ref, err := newOrderRef(agentID, orderID)
	if err != nil {
		return PickupOrderCommand{}, err
	}
	return PickupOrderCommand{orderRef: ref, sample: sample, guard: guard.NewConstructorGuard()}, nil
}

func (c PickupOrderCommand) Validate() error {
	return c.guard.Validate(ErrPickupOrderCommandIsNotConstructed)
}

func (c PickupOrderCommand) Sample() *PositionSample {
	return c.sample
}

type DeliverOrderCommand struct { //nolint:recvcheck //using for validation
	orderRef
	sample *PositionSample

	guard guard.ConstructorGuard
}

func NewDeliverOrderCommand(agentID, orderID kernel.UUID, sample *PositionSample) (DeliverOrderCommand, error) {
	ref, err := newOrderRef(agentID, orderID)
	if err != nil {
		return DeliverOrderCommand{}, err
	}
	return DeliverOrderCommand{orderRef: ref, sample: sample, guard: guard.NewConstructorGuard()}, nil
}

func (c DeliverOrderCommand) Validate() error {
	return c.guard.Validate(ErrDeliverOrderCommandIsNotConstructed)
}

func (c DeliverOrderCommand) Sample() *PositionSample {
	return c.sample
}

type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderRef
	reason string

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand records reason on the order; empty means user_cancelled.
func NewCancelOrderCommand(agentID, orderID kernel.UUID, reason string) (CancelOrderCommand, error) {
	ref, err := newOrderRef(agentID, orderID)
	if err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{orderRef: ref, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) Reason() string {
	return c.reason
}
