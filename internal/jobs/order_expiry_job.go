package jobs

import (
	"context"
	"log/slog"

	"github.com/RuslanFatikhov/q-ryer/internal/core/application/usecases/commands"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

// DefaultExpirySchedule runs the sweep every 15 seconds.
const DefaultExpirySchedule = "*/15 * * * * *"

type OrderExpirer interface {
	Handle(ctx context.Context, cmd commands.ExpireOrdersCommand) ([]kernel.UUID, error)
}

// OrderExpiryJob closes orders whose pickup timeout or delivery timer ran out,
// so abandoned orders do not block their agent's next search.
type OrderExpiryJob struct {
	handler  OrderExpirer
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewOrderExpiryJob(handler OrderExpirer, schedule string, logger *slog.Logger) *OrderExpiryJob {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	return &OrderExpiryJob{
		handler:  handler,
		schedule: schedule,
		cron:     newCron(),
		logger:   logger.With("component", "order_expiry_job"),
	}
}

func (j *OrderExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Order expiry job started", "schedule", j.schedule)
	return nil
}

// RunOnce performs a single sweep.
func (j *OrderExpiryJob) RunOnce(ctx context.Context) {
	expired, err := j.handler.Handle(ctx, commands.NewExpireOrdersCommand())
	if len(expired) > 0 {
		j.logger.InfoContext(ctx, "Orders expired", "count", len(expired))
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "Order expiry sweep failed", "error", err)
	}
}

// Stop unschedules the job and returns a context that is done once a sweep
// in progress has finished.
func (j *OrderExpiryJob) Stop() context.Context {
	ctx := j.cron.Stop()
	j.logger.Info("Order expiry job stopped")
	return ctx
}
