package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RuslanFatikhov/q-ryer/cmd"
	"github.com/RuslanFatikhov/q-ryer/internal/adapters/out/postgres"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/logging"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs, err := cmd.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logger := logging.NewLogger(configs.LogLevel)

	gormDB, err := openStorage(configs)
	if err != nil {
		log.Fatalf("Error opening storage: %v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Error wiring application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = app.WarmUp(ctx); err != nil {
		logger.WarnContext(ctx, "catalog warm-up skipped", "error", err)
	}

	jobManager, err := app.CreateJobManager(ctx)
	if err != nil {
		log.Fatalf("Error creating jobs: %v", err)
	}
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}

	go reloadOnHangup(ctx, app, logger)

	e := startWebServer(app, configs.HTTPPort, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", "error", err)
	}
	if err = jobManager.StopAll(shutdownCtx); err != nil {
		logger.Error("jobs shutdown", "error", err)
	}
	if err = app.Close(shutdownCtx); err != nil {
		logger.Error("application shutdown", "error", err)
	}
}

func openStorage(configs cmd.Config) (*gorm.DB, error) {
	if configs.Storage == cmd.StorageMemory {
		return nil, nil
	}

	db, err := gorm.Open(gorm_postgres.Open(configs.PostgresDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err = postgres.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// reloadOnHangup re-reads the configuration on SIGHUP and swaps in the new
// economy and catalog. A bad configuration keeps the running one.
func reloadOnHangup(ctx context.Context, app *cmd.CompositionRoot, logger *slog.Logger) {
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hangup:
			configs, err := cmd.LoadConfig(os.Args[1:])
			if err != nil {
				logger.ErrorContext(ctx, "reload rejected", "error", err)
				continue
			}
			if err = app.Reload(ctx, configs); err != nil {
				logger.ErrorContext(ctx, "reload incomplete", "error", err)
			}
		}
	}
}

func startWebServer(app *cmd.CompositionRoot, port string, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	app.CreateHTTPServer().Register(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			e.Logger.Fatal(err)
		}
	}()
	return e
}
