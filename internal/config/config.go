// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package config provides configuration management for Reelsync.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: override any setting (REELSYNC_SERVER_PORT, ...)
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Vault    VaultConfig    `koanf:"vault"`
	Browser  BrowserConfig  `koanf:"browser"`
	Scrape   ScrapeConfig   `koanf:"scrape"`
	Sync     SyncConfig     `koanf:"sync"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings for the movie/record store.
type DatabaseConfig struct {
	// Path is the database file location. ":memory:" opens an in-memory
	// database (used by tests).
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads caps DuckDB worker threads. 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// VaultConfig holds credential vault settings.
//
// The encryption key is derived (HKDF-SHA256) from Key when set, otherwise
// from the contents of KeyFile. When neither exists a fresh key file is
// generated on first use, so a default deployment works without setup.
type VaultConfig struct {
	// Path is the directory for the vault's badger store.
	Path string `koanf:"path"`
	// Key is explicit key material, e.g. from REELSYNC_VAULT_KEY.
	Key string `koanf:"key"`
	// KeyFile is the fallback key material file.
	KeyFile string `koanf:"key_file"`
}

// BrowserConfig holds browser automation settings for the login session.
type BrowserConfig struct {
	// Bin is an explicit Chrome/Chromium binary path. Empty means the
	// launcher's own lookup/download behavior.
	Bin string `koanf:"bin"`
	// Headless hides the browser window. Interactive login forces a
	// visible window regardless.
	Headless bool `koanf:"headless"`
	// LoginURL is the external site's login page.
	LoginURL string `koanf:"login_url"`
	// InteractiveTimeout bounds human-paced login (wall clock).
	InteractiveTimeout time.Duration `koanf:"interactive_timeout"`
	// FormTimeout bounds automated form-fill login.
	FormTimeout time.Duration `koanf:"form_timeout"`
	// PollInterval is the login-state polling cadence.
	PollInterval time.Duration `koanf:"poll_interval"`
}

// ScrapeConfig holds watch-history scraping settings.
type ScrapeConfig struct {
	// BaseURL is the external site root, e.g. "https://eiga.com".
	BaseURL string `koanf:"base_url"`
	// MaxPages guards against unbounded pagination when the site's
	// structure drifts.
	MaxPages int `koanf:"max_pages"`
	// PageTimeout bounds a single page fetch.
	PageTimeout time.Duration `koanf:"page_timeout"`
	// FailureRateThreshold is the per-page fraction of malformed entries
	// above which the scrape fails as a structure change.
	FailureRateThreshold float64 `koanf:"failure_rate_threshold"`
	// RequestsPerSecond paces page fetches.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// SyncConfig holds reconciliation policy settings.
type SyncConfig struct {
	// OverwriteManualEdits lets re-sync refresh fields of a synced record
	// the user has edited. Default false: manual edits win.
	OverwriteManualEdits bool `koanf:"overwrite_manual_edits"`
}

// APIConfig holds pagination and rate limiting settings.
type APIConfig struct {
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log level and format settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
