package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
)

type State string

const (
	Idle      State = "idle"
	Searching State = "searching"
	Found     State = "found"
	NotFound  State = "not_found"
	Cancelled State = "cancelled"
	Failed    State = "error"
)

var (
	ErrAlreadySearching = errors.New("agent is already searching")
	ErrNotSearching     = errors.New("agent is not searching")
	ErrRegistryClosed   = errors.New("search registry is shut down")
)

// Settings shape the simulated search latency: a session lasts a uniformly
// drawn number of ticks in [MinTicks, MaxTicks].
type Settings struct {
	Tick     time.Duration
	MinTicks int
	MaxTicks int
}

func DefaultSettings() Settings {
	return Settings{Tick: time.Second, MinTicks: 5, MaxTicks: 15}
}

func (s Settings) Validate() error {
	if s.Tick <= 0 {
		return fmt.Errorf("search tick must be positive, got %s", s.Tick)
	}
	if s.MinTicks < 0 || s.MaxTicks < s.MinTicks {
		return fmt.Errorf("search ticks range [%d, %d] is invalid", s.MinTicks, s.MaxTicks)
	}
	return nil
}

// Outcome is how a session ended. Found is set only for the Found state.
type Outcome struct {
	State State
	Found *commands.FoundOrder
	Err   error
}

// Session is a handle on one running search.
type Session struct {
	agentID    kernel.UUID
	radiusKm   float64
	totalTicks int
	startedAt  time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	outcome Outcome
}

func (s *Session) AgentID() kernel.UUID {
	return s.agentID
}

func (s *Session) TotalTicks() int {
	return s.totalTicks
}

// Done is closed once the session has ended and the agent is Idle again.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Outcome is valid after Done is closed.
func (s *Session) Outcome() Outcome {
	<-s.done
	return s.outcome
}
