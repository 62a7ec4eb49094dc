// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must not be negative, got %d", c.Database.Threads)
	}

	if c.Vault.Path == "" {
		return fmt.Errorf("vault.path must not be empty")
	}
	if c.Vault.Key == "" && c.Vault.KeyFile == "" {
		return fmt.Errorf("either vault.key or vault.key_file must be set")
	}

	if err := validateURL("browser.login_url", c.Browser.LoginURL); err != nil {
		return err
	}
	if c.Browser.InteractiveTimeout <= 0 {
		return fmt.Errorf("browser.interactive_timeout must be positive, got %s", c.Browser.InteractiveTimeout)
	}
	if c.Browser.FormTimeout <= 0 {
		return fmt.Errorf("browser.form_timeout must be positive, got %s", c.Browser.FormTimeout)
	}
	if c.Browser.PollInterval <= 0 {
		return fmt.Errorf("browser.poll_interval must be positive, got %s", c.Browser.PollInterval)
	}

	if err := validateURL("scrape.base_url", c.Scrape.BaseURL); err != nil {
		return err
	}
	if c.Scrape.MaxPages < 1 {
		return fmt.Errorf("scrape.max_pages must be at least 1, got %d", c.Scrape.MaxPages)
	}
	if c.Scrape.PageTimeout <= 0 {
		return fmt.Errorf("scrape.page_timeout must be positive, got %s", c.Scrape.PageTimeout)
	}
	if c.Scrape.FailureRateThreshold <= 0 || c.Scrape.FailureRateThreshold > 1 {
		return fmt.Errorf("scrape.failure_rate_threshold must be in (0, 1], got %g", c.Scrape.FailureRateThreshold)
	}
	if c.Scrape.RequestsPerSecond <= 0 {
		return fmt.Errorf("scrape.requests_per_second must be positive, got %g", c.Scrape.RequestsPerSecond)
	}

	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must not be smaller than api.default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.RateLimitReqs < 1 {
		return fmt.Errorf("api.rate_limit_reqs must be at least 1, got %d", c.API.RateLimitReqs)
	}
	if c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive, got %s", c.API.RateLimitWindow)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
