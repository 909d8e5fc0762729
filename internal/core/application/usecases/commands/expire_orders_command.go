package commands

import (
	"errors"

	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"
)

var ErrExpireOrdersCommandIsNotConstructed = errors.New(
	"ExpireOrdersCommand must be created via NewExpireOrdersCommand constructor",
)

// ExpireOrdersCommand sweeps every open order whose deadline has passed.
type ExpireOrdersCommand struct {
	guard guard.ConstructorGuard
}

func NewExpireOrdersCommand() ExpireOrdersCommand {
	return ExpireOrdersCommand{guard: guard.NewConstructorGuard()}
}

func (c ExpireOrdersCommand) Validate() error {
	return c.guard.Validate(ErrExpireOrdersCommandIsNotConstructed)
}
