package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type CatalogReloader interface {
	Reload(ctx context.Context, regionID string) error
}

// CatalogRefreshJob re-reads the catalog of each region so edits to the
// GeoJSON files reach the matcher without a restart.
type CatalogRefreshJob struct {
	index    CatalogReloader
	regions  []string
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewCatalogRefreshJob(index CatalogReloader, regions []string, schedule string, logger *slog.Logger) *CatalogRefreshJob {
	return &CatalogRefreshJob{
		index:    index,
		regions:  regions,
		schedule: schedule,
		cron:     newCron(),
		logger:   logger.With("component", "catalog_refresh_job"),
	}
}

func (j *CatalogRefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Catalog refresh job started", "schedule", j.schedule, "regions", j.regions)
	return nil
}

// RunOnce reloads every region. A region that fails keeps its cached copy
// and the others are still refreshed.
func (j *CatalogRefreshJob) RunOnce(ctx context.Context) {
	for _, regionID := range j.regions {
		if err := j.index.Reload(ctx, regionID); err != nil {
			j.logger.ErrorContext(ctx, "Catalog refresh failed", "region", regionID, "error", err)
		}
	}
}

func (j *CatalogRefreshJob) Stop() context.Context {
	ctx := j.cron.Stop()
	j.logger.Info("Catalog refresh job stopped")
	return ctx
}
