package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"
)

// Finder creates the order at the end of a search.
type Finder interface {
	Handle(ctx context.Context, cmd commands.FindOrderCommand) (commands.FoundOrder, error)
}

type Registry struct {
	finder     Finder
	uowFactory ports.UnitOfWorkFactory
	publisher  ports.EventPublisher
	clock      ports.Clock
	metrics    ports.GameMetrics
	logger     *slog.Logger
	settings   Settings

	rndMu sync.Mutex
	rnd   ports.RandomSource

	mu       sync.Mutex
	sessions map[kernel.UUID]*Session

	base     context.Context
	stopBase context.CancelFunc
	running  sync.WaitGroup
}

func NewRegistry(
	finder Finder,
	uowFactory ports.UnitOfWorkFactory,
	publisher ports.EventPublisher,
	clock ports.Clock,
	rnd ports.RandomSource,
	metrics ports.GameMetrics,
	logger *slog.Logger,
	settings Settings,
) (*Registry, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	base, stop := context.WithCancel(context.Background())
	return &Registry{
		finder:     finder,
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clock,
		rnd:        rnd,
		metrics:    metrics,
		logger:     logger.With("component", "search_registry"),
		settings:   settings,
		sessions:   make(map[kernel.UUID]*Session),
		base:       base,
		stopBase:   stop,
	}, nil
}

// Start launches a search for the agent. radiusKm of zero means the agent's
// own search radius. It fails with ports.ErrAgentHasActiveOrder when the agent
// already holds an open order and with ErrAlreadySearching when a session is
// running.
func (r *Registry) Start(ctx context.Context, agentID kernel.UUID, radiusKm float64) (*Session, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("radius", fmt.Errorf("%v is negative", radiusKm))
	}

	if err := r.ensureNoOpenOrder(ctx, agentID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.base.Err() != nil {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if _, busy := r.sessions[agentID]; busy {
		r.mu.Unlock()
		return nil, ErrAlreadySearching
	}

	sessionCtx, cancel := context.WithCancel(r.base)
	s := &Session{
		agentID:    agentID,
		radiusKm:   radiusKm,
		totalTicks: r.drawTicks(),
		startedAt:  r.clock.Now(),
		ctx:        sessionCtx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	r.sessions[agentID] = s
	r.running.Add(1)
	r.mu.Unlock()

	go r.run(s)
	return s, nil
}

// Stop asks the agent's session to end. The session reports Cancelled within
// one tick.
func (r *Registry) Stop(agentID kernel.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[agentID]
	if !ok {
		return ErrNotSearching
	}
	s.cancel()
	return nil
}

func (r *Registry) Status(agentID kernel.UUID) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[agentID]; ok {
		return Searching
	}
	return Idle
}

// Active counts running sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Shutdown cancels every session and waits for them to end or ctx to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.stopBase()
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) ensureNoOpenOrder(ctx context.Context, agentID kernel.UUID) error {
	_, err := r.uowFactory.Create().OrderRepository().GetActiveByAgent(ctx, agentID)
	switch {
	case err == nil:
		return ports.ErrAgentHasActiveOrder
	case errors.Is(err, errs.ErrObjectNotFound):
		return nil
	default:
		return err
	}
}

func (r *Registry) drawTicks() int {
	span := r.settings.MaxTicks - r.settings.MinTicks + 1
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.settings.MinTicks + r.rnd.IntN(span)
}

func (r *Registry) run(s *Session) {
	defer r.running.Done()
	defer r.finish(s)
	defer func() {
		if p := recover(); p != nil {
			s.outcome = Outcome{State: Failed, Err: fmt.Errorf("search panicked: %v", p)}
			r.logger.Error("search session panicked", "agent_id", s.agentID.String(), "panic", p)
		}
	}()

	s.outcome = r.search(s)
}

// finish makes the agent Idle again before anyone waiting on Done wakes up.
func (r *Registry) finish(s *Session) {
	r.mu.Lock()
	if r.sessions[s.agentID] == s {
		delete(r.sessions, s.agentID)
	}
	r.mu.Unlock()
	s.cancel()

	r.announce(s)
	r.metrics.SearchFinished(string(s.outcome.State))
	close(s.done)
}
