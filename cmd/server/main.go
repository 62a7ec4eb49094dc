// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package main is the entry point for the Reelsync server.
//
// Reelsync keeps a local movie watch-history catalog in sync with an
// eiga.com account. A sync run drives a real browser through the site
// login, walks the user's watch-history pages and merges every entry
// into the local DuckDB catalog without duplicating what is already
// there. Manual records and manual edits are first-class: a sync never
// clobbers them unless explicitly configured to.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Open DuckDB and create the catalog schema
//  3. Vault: BadgerDB-backed encrypted credential store
//  4. Browser: rod-driven Chromium for site login
//  5. Sync pipeline: scraper, reconcile engine and sync manager
//  6. HTTP Server: REST API plus /health and /metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults. See internal/config for the full key list.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting new connections, waits up to 10s for in-flight requests,
// then closes the browser, vault and database.
//
// # Example Usage
//
//	export DATABASE_PATH=/data/reelsync.db
//	export VAULT_PATH=/data/vault
//	export BROWSER_HEADLESS=false   # interactive login needs a visible window
//	./reelsync
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/reelsync/internal/api"
	"github.com/tomtom215/reelsync/internal/browser"
	"github.com/tomtom215/reelsync/internal/config"
	"github.com/tomtom215/reelsync/internal/database"
	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/reconcile"
	"github.com/tomtom215/reelsync/internal/scrape"
	"github.com/tomtom215/reelsync/internal/syncer"
	"github.com/tomtom215/reelsync/internal/vault"
)

// version is overridden at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("vault_path", cfg.Vault.Path).
		Bool("headless", cfg.Browser.Headless).
		Msg("Starting Reelsync")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	vlt, err := vault.New(cfg.Vault)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open credential vault")
	}
	defer func() {
		if err := vlt.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing vault")
		}
	}()

	driver := browser.NewDriver(cfg.Browser)
	scraper := scrape.NewScraper(cfg.Scrape)
	engine := reconcile.New(db, cfg.Sync.OverwriteManualEdits)
	manager := syncer.NewManager(syncer.NewRodDriver(driver), scraper, engine, vlt)

	handler := api.NewHandler(db, manager, vlt, cfg.API, version)
	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      api.NewRouter(handler, cfg.API),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Serve until a shutdown signal arrives
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if manager.Running() {
		logging.Warn().Msg("Sync still running at shutdown; browser session will be closed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
