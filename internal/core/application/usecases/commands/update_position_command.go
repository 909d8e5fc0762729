package commands

import (
	"errors"
	"fmt"
	"math"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var ErrUpdatePositionCommandIsNotConstructed = errors.New(
	"UpdatePositionCommand must be created via NewUpdatePositionCommand constructor",
)

// UpdatePositionCommand carries one GPS sample. AccuracyM is the reported
// horizontal accuracy; zero means unknown and is treated as precise.
type UpdatePositionCommand struct { //nolint:recvcheck //using for validation
	agentID   kernel.UUID
	position  kernel.GeoPoint
	accuracyM float64

	guard guard.ConstructorGuard
}

func NewUpdatePositionCommand(agentID kernel.UUID, latitude, longitude, accuracyM float64) (UpdatePositionCommand, error) {
	cmd := UpdatePositionCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setAgentID(agentID),
		cmd.setPosition(latitude, longitude),
		cmd.setAccuracy(accuracyM),
	); err != nil {
		return UpdatePositionCommand{}, err
	}

	return cmd, nil
}

func (c UpdatePositionCommand) Validate() error {
	return c.guard.Validate(ErrUpdatePositionCommandIsNotConstructed)
}

func (c UpdatePositionCommand) AgentID() kernel.UUID {
	return c.agentID
}

func (c UpdatePositionCommand) Position() kernel.GeoPoint {
	return c.position
}

func (c UpdatePositionCommand) AccuracyM() float64 {
	return c.accuracyM
}

func (c *UpdatePositionCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *UpdatePositionCommand) setPosition(latitude, longitude float64) error {
	p, err := kernel.NewGeoPoint(latitude, longitude)
	if err != nil {
		return err
	}

	c.position = p
	return nil
}

func (c *UpdatePositionCommand) setAccuracy(accuracyM float64) error {
	if math.IsNaN(accuracyM) || accuracyM < 0 {
		return errs.NewValueIsInvalidErrorWithCause("accuracy", fmt.Errorf("%v is negative", accuracyM))
	}

	c.accuracyM = accuracyM
	return nil
}
