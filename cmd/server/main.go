/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the HR engine server: attendance classification,
  exit settlements and the month-close scheduler.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Initialize SQLite store and seed preset rosters
  3. Build the classifier and settlement calculator from config
  4. Start the month-close scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides APP_PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  APP_PORT, APP_ENV, LOG_LEVEL, CORS_ORIGINS, DB_PATH,
  TIMEZONE_OFFSET_MINUTES, SETTLEMENT_RULES_JSON,
  MONTH_CLOSE_ENABLED, MONTH_CLOSE_INTERVAL, MONTH_CLOSE_WORKERS

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the month-close scheduler
  4. Close database connection

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - api/scheduler.go: Month close
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/hr-engine/api"
	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/config"
	"github.com/warp/hr-engine/factory"
	"github.com/warp/hr-engine/generic"
	"github.com/warp/hr-engine/settlement"
	"github.com/warp/hr-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override the environment
	port := flag.Int("port", cfg.App.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	flag.Parse()

	logger := api.NewLogger(os.Stdout, cfg.SlogLevel(), "app", "hr-engine", "env", cfg.App.Env)
	slog.SetDefault(logger)

	store, err := sqlite.New(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	rules, err := factory.ParseSettlementConfig(cfg.Settlement.RulesJSON)
	if err != nil {
		return err
	}
	calculator, err := settlement.NewCalculator(rules)
	if err != nil {
		return fmt.Errorf("invalid settlement rules: %w", err)
	}

	handler := api.NewHandler(store, logger)
	handler.Calculator = calculator
	handler.Classifier = attendance.NewClassifier(generic.FixedZone(cfg.Attendance.TimezoneOffsetMinutes))

	if err := handler.SeedRosters(context.Background()); err != nil {
		return fmt.Errorf("failed to seed rosters: %w", err)
	}

	handler.MonthClose.Enabled = cfg.MonthClose.Enabled
	handler.MonthClose.CheckInterval = cfg.MonthClose.Interval
	handler.MonthClose.Workers = cfg.MonthClose.Workers
	handler.MonthClose.Start()
	defer handler.MonthClose.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler, cfg.App.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "db", *dbPath, "notice_period_days", rules.NoticePeriodDays)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
