// Package jobs runs the game's scheduled background work on
// github.com/robfig/cron/v3 with second-resolution schedules.
//
// # Available Jobs
//
// 1. OrderExpiryJob - sweeps Pending and Active orders whose deadline passed
// 2. CatalogRefreshJob - re-reads the GeoJSON catalog of every served region
//
// # Usage
//
//	jobManager, err := jobs.NewJobManager(expiryJob, refreshJob)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll(ctx)
//
// # Error Handling
//
// A run never overlaps the previous one of the same job. Failures are logged
// and the next tick tries again.
package jobs
