/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the claim interest calculation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env / environment)
  2. Parse the embedded benchmark rate snapshot
  3. Open the audit workbook (SQLite)
  4. Build the engine and API handler
  5. Start the HTTP server with graceful shutdown

ENVIRONMENT:
  PORT             HTTP port (default 8080)
  WORKBOOK_PATH    Audit workbook path (default claims.db, ":memory:" ok)
  LOG_LEVEL        logrus level (default info)
  ALLOWED_ORIGINS  Comma-separated CORS origins

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  in-flight requests, close the workbook, exit.
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

	"github.com/sirupsen/logrus"

	"github.com/cosiris15/debt-review-sub000/api"
	"github.com/cosiris15/debt-review-sub000/config"
	"github.com/cosiris15/debt-review-sub000/engine"
	"github.com/cosiris15/debt-review-sub000/ratetable"
	"github.com/cosiris15/debt-review-sub000/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// The rate snapshot is versioned data bundled with the binary; a
	// malformed snapshot means a broken build, so fail fast.
	rates, err := ratetable.Load()
	if err != nil {
		log.Fatalf("Failed to load rate snapshot: %v", err)
	}
	log.WithFields(logrus.Fields{
		"version": rates.Version(),
		"as_of":   rates.AsOf().String(),
	}).Info("rate snapshot loaded")

	workbook, err := report.Open(cfg.WorkbookPath)
	if err != nil {
		log.Fatalf("Failed to open workbook: %v", err)
	}
	defer workbook.Close()

	handler := api.NewHandler(engine.New(rates), rates, workbook, log)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
