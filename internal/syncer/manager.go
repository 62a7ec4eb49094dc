// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package syncer orchestrates a sync attempt: credential resolution,
// browser login, history scrape and reconciliation. A single account
// lease serializes attempts; every internal failure collapses into a
// structured SyncOutcome rather than a raw error chain.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelsync/internal/browser"
	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/metrics"
	"github.com/tomtom215/reelsync/internal/models"
	"github.com/tomtom215/reelsync/internal/reconcile"
	"github.com/tomtom215/reelsync/internal/scrape"
	"github.com/tomtom215/reelsync/internal/vault"
)

// ErrSyncInProgress is returned when a sync attempt is rejected because
// another one holds the account lease.
var ErrSyncInProgress = errors.New("sync already in progress")

// Session is the slice of an authenticated browser session the syncer
// manages. A *browser.Session satisfies it.
type Session interface {
	UserID() string
	PageHTML(ctx context.Context, url string) (string, error)
	Close() error
}

// Driver opens authenticated browser sessions.
type Driver interface {
	Login(ctx context.Context, email, password string) (Session, error)
}

// Scraper walks the watch history of an authenticated session.
type Scraper interface {
	FetchHistory(ctx context.Context, session scrape.PageFetcher) ([]models.ScrapedEntry, int, error)
}

// Reconciler merges scraped entries into the catalog.
type Reconciler interface {
	Reconcile(ctx context.Context, entries []models.ScrapedEntry) (*reconcile.Result, error)
}

// CredentialStore is the slice of the vault the syncer needs.
type CredentialStore interface {
	OpenSecret(ctx context.Context) (email, password string, err error)
	Save(ctx context.Context, email, password string) error
	TouchLastSync(ctx context.Context, at time.Time) error
}

// Manager serializes sync attempts and runs each on a dedicated worker
// goroutine. Callers block on the completion channel, so cancellation of
// their context reaches the browser and scraper.
type Manager struct {
	driver  Driver
	scraper Scraper
	engine  Reconciler
	vault   CredentialStore

	mu      sync.Mutex
	running bool

	nowFunc func() time.Time
}

// NewManager wires the sync pipeline.
func NewManager(driver Driver, scraper Scraper, engine Reconciler, credentials CredentialStore) *Manager {
	return &Manager{
		driver:  driver,
		scraper: scraper,
		engine:  engine,
		vault:   credentials,
		nowFunc: time.Now,
	}
}

// Running reports whether a sync attempt currently holds the lease.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Sync runs one sync attempt. It returns ErrSyncInProgress synchronously
// when another attempt holds the lease; otherwise it blocks until the
// worker goroutine finishes and returns its outcome.
func (m *Manager) Sync(ctx context.Context, opts models.SyncOptions) (*models.SyncOutcome, error) {
	if !m.tryAcquire() {
		metrics.SyncInProgressRejections.Inc()
		return nil, ErrSyncInProgress
	}

	done := make(chan *models.SyncOutcome, 1)
	go func() {
		defer m.release()
		done <- m.run(ctx, opts)
	}()

	return <-done, nil
}

func (m *Manager) tryAcquire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return false
	}
	m.running = true
	return true
}

func (m *Manager) release() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}

func (m *Manager) run(ctx context.Context, opts models.SyncOptions) *models.SyncOutcome {
	runID := uuid.NewString()
	start := m.nowFunc()

	logging.Info().
		Str("run_id", runID).
		Bool("use_saved", opts.UseSavedCredentials).
		Msg("Sync attempt started")

	outcome := m.attemptSafe(ctx, opts)
	duration := m.nowFunc().Sub(start)

	result := outcomeResult(outcome)
	metrics.SyncRunsTotal.WithLabelValues(result).Inc()
	metrics.SyncDuration.Observe(duration.Seconds())

	logging.Info().
		Str("run_id", runID).
		Str("result", result).
		Int("added", outcome.Added).
		Int("existing", outcome.Existing).
		Dur("duration", duration).
		Msg("Sync attempt finished")

	return outcome
}

// attemptSafe converts a panic anywhere in the attempt (browser,
// parsing, reconcile) into a failed outcome. The worker goroutine is
// outside the router's Recoverer, so an escaped panic would take the
// process down.
func (m *Manager) attemptSafe(ctx context.Context, opts models.SyncOptions) (outcome *models.SyncOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Sync attempt panicked")
			outcome = &models.SyncOutcome{Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()
	return m.attempt(ctx, opts)
}

func (m *Manager) attempt(ctx context.Context, opts models.SyncOptions) *models.SyncOutcome {
	email, password, usedSaved, outcome := m.resolveCredentials(ctx, opts)
	if outcome != nil {
		return outcome
	}

	session, err := m.driver.Login(ctx, email, password)
	if err != nil {
		return loginOutcome(err, usedSaved)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logging.Debug().Err(err).Msg("Session close failed")
		}
	}()

	// Credentials are persisted only after they actually worked, only
	// when the caller asked for it, and only when they were supplied in
	// the request rather than read back out of the vault.
	if opts.SaveCredentials && !usedSaved && email != "" && password != "" {
		if err := m.vault.Save(ctx, email, password); err != nil {
			logging.Warn().Err(err).Msg("Failed to save credentials after login")
		}
	}

	entries, skipped, scrapeErr := m.scraper.FetchHistory(ctx, session)
	if scrapeErr != nil && len(entries) == 0 {
		return scrapeOutcome(scrapeErr, skipped)
	}

	res, err := m.engine.Reconcile(ctx, entries)
	if err != nil {
		return &models.SyncOutcome{
			Skipped: skipped,
			Message: fmt.Sprintf("reconciliation failed: %v", err),
		}
	}

	outcome = &models.SyncOutcome{
		Success:       scrapeErr == nil,
		Added:         res.Added,
		Existing:      res.Existing,
		UpdatedMovies: res.UpdatedMovies,
		Skipped:       skipped,
		Errors:        len(res.Errors),
	}

	if scrapeErr != nil {
		// Entries fetched before the failure are already merged; the
		// outcome reports the partial run as a failure.
		partial := scrapeOutcome(scrapeErr, skipped)
		outcome.Cancelled = partial.Cancelled
		outcome.Message = partial.Message
		return outcome
	}

	if err := m.vault.TouchLastSync(ctx, m.nowFunc().UTC()); err != nil {
		logging.Warn().Err(err).Msg("Failed to record last sync time")
	}

	outcome.Message = fmt.Sprintf("synced %d entries: %d added, %d existing",
		len(entries), outcome.Added, outcome.Existing)
	return outcome
}

// resolveCredentials picks the email/password for the attempt. Explicit
// options win; otherwise the saved credential is used when requested.
// Empty credentials mean interactive login. A non-nil outcome short
// circuits the attempt.
func (m *Manager) resolveCredentials(ctx context.Context, opts models.SyncOptions) (email, password string, usedSaved bool, outcome *models.SyncOutcome) {
	if opts.Email != "" && opts.Password != "" {
		return opts.Email, opts.Password, false, nil
	}

	if !opts.UseSavedCredentials {
		return "", "", false, nil
	}

	email, password, err := m.vault.OpenSecret(ctx)
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			// No saved credential: fall through to interactive login.
			return "", "", false, nil
		}
		return "", "", false, &models.SyncOutcome{
			Message: "failed to load saved credentials",
		}
	}
	return email, password, true, nil
}

// loginOutcome maps an authentication failure to a structured outcome.
func loginOutcome(err error, usedSaved bool) *models.SyncOutcome {
	switch {
	case browser.IsCredentialRejected(err):
		return &models.SyncOutcome{
			CanFallbackToInteractive: true,
			Message:                  "credentials were rejected; retry with interactive login",
		}
	case browser.IsCancelled(err):
		return &models.SyncOutcome{
			Cancelled: true,
			Message:   "login cancelled",
		}
	default:
		var authErr *browser.AuthError
		if errors.As(err, &authErr) {
			switch authErr.Kind {
			case browser.KindTimeout:
				return &models.SyncOutcome{Message: "login timed out"}
			case browser.KindInvalidCredential:
				return &models.SyncOutcome{
					CanFallbackToInteractive: usedSaved,
					Message:                  "login failed: " + authErr.Error(),
				}
			}
		}
		return &models.SyncOutcome{Message: fmt.Sprintf("login failed: %v", err)}
	}
}

// scrapeOutcome maps a scrape failure to a structured outcome. A browser
// closed mid-scrape counts as user cancellation.
func scrapeOutcome(err error, skipped int) *models.SyncOutcome {
	if browser.IsCancelled(err) {
		return &models.SyncOutcome{
			Cancelled: true,
			Skipped:   skipped,
			Message:   "sync cancelled",
		}
	}
	if scrape.IsStructureChanged(err) {
		return &models.SyncOutcome{
			Skipped: skipped,
			Message: "history page layout not recognized; the site may have changed",
		}
	}
	return &models.SyncOutcome{
		Skipped: skipped,
		Message: fmt.Sprintf("scrape failed: %v", err),
	}
}

func outcomeResult(outcome *models.SyncOutcome) string {
	switch {
	case outcome.Success:
		return "success"
	case outcome.Cancelled:
		return "cancelled"
	case outcome.CanFallbackToInteractive:
		return "auth_failed"
	default:
		return "error"
	}
}
