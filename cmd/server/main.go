/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the expense-report approval engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (env vars + optional .env)
  2. Build the structured logger
  3. Initialize SQLite store
  4. Wire approval and directory sync services
  5. Start the reminder scheduler
  6. Start HTTP server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, close the database
  4. Exit

EXAMPLES:
  # Run with file database
  DB_PATH=./data/approvals.db ./server

  # Run with in-memory database on another port
  DB_PATH=":memory:" PORT=3000 ./server

  # Sync against a real HR roster
  ROSTER_URL=https://hr.example.com/api/roster ROSTER_TOKEN=... ./server

SEE ALSO:
  - config/config.go: All environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/approval-engine/api"
	"github.com/warp/approval-engine/approval"
	"github.com/warp/approval-engine/config"
	"github.com/warp/approval-engine/directory"
	"github.com/warp/approval-engine/logging"
	"github.com/warp/approval-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.Environment)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Wire services
	approvals := approval.NewService(store, log)

	var roster directory.RosterSource
	switch {
	case cfg.RosterURL != "":
		roster = directory.NewHTTPSource(cfg.RosterURL, cfg.RosterToken)
	case cfg.RosterFile != "":
		roster = &directory.FileSource{Path: cfg.RosterFile}
	default:
		// No roster configured; sync endpoints report the fetch failure.
		roster = &directory.StaticSource{Err: fmt.Errorf("no roster source configured (set ROSTER_URL or ROSTER_FILE)")}
	}
	sync := directory.NewSyncService(store, roster, log)

	// Reminder scheduler
	scheduler, err := api.NewReminderScheduler(store, approvals, log, cfg.ReminderCron)
	if err != nil {
		log.WithError(err).Fatal("failed to build reminder scheduler")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP server
	handler := api.NewHandler(approvals, sync, store, log)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
