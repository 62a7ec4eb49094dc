// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package scrape extracts the watch-history listing from an
// authenticated browser session. Pages are fetched sequentially, rate
// limited and behind a circuit breaker; individual entries that fail to
// parse are skipped and counted rather than failing the run.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelsync/internal/config"
	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/metrics"
	"github.com/tomtom215/reelsync/internal/models"
)

// PageFetcher is the slice of a browser session the scraper needs.
type PageFetcher interface {
	UserID() string
	PageHTML(ctx context.Context, url string) (string, error)
}

// Scraper walks a user's paginated watch history.
type Scraper struct {
	cfg     config.ScrapeConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	nowFunc func() time.Time
}

// NewScraper builds a scraper from configuration. The circuit breaker
// opens after a 60% failure rate across at least 5 page fetches.
func NewScraper(cfg config.ScrapeConfig) *Scraper {
	cbName := "history-pages"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:     cbName,
		Interval: time.Minute,
		Timeout:  2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("Page fetch circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Scraper{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		breaker: cb,
		nowFunc: time.Now,
	}
}

// FetchHistory walks the watched-movies listing of the session's user
// and returns every parseable entry plus the count of entries skipped by
// parse failures. Entries collected before a failure are returned
// alongside the error.
func (s *Scraper) FetchHistory(ctx context.Context, session PageFetcher) ([]models.ScrapedEntry, int, error) {
	userID := session.UserID()
	if userID == "" {
		return nil, 0, NewError(KindStructureChanged, 0, errors.New("session has no user id"))
	}

	var entries []models.ScrapedEntry
	skipped := 0
	now := s.nowFunc().UTC()

	for page := 1; page <= s.cfg.MaxPages; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return entries, skipped, NewError(KindNetworkFailure, page, err)
		}

		pageURL := s.historyPageURL(userID, page)
		logging.Debug().Int("page", page).Str("url", pageURL).Msg("Fetching history page")

		html, err := s.fetchPage(ctx, session, pageURL)
		if err != nil {
			metrics.ScrapePagesTotal.WithLabelValues("error").Inc()
			return entries, skipped, NewError(KindNetworkFailure, page, err)
		}

		res, err := parseHistoryPage(html, s.cfg.BaseURL, now)
		if err != nil {
			metrics.ScrapePagesTotal.WithLabelValues("error").Inc()
			return entries, skipped, NewError(KindStructureChanged, page, err)
		}

		if res.found == 0 {
			metrics.ScrapePagesTotal.WithLabelValues("empty").Inc()
			if page == 1 && !res.listing {
				// No entries and no listing chrome: the markup changed
				// (or we landed on a login wall). An empty history keeps
				// its chrome and is a valid zero-entry result.
				return entries, skipped, NewError(KindStructureChanged, page,
					errors.New("watched listing not recognized on first page"))
			}
			logging.Debug().Int("page", page).Msg("Empty history page, stopping")
			break
		}

		if failureRate := float64(res.skipped) / float64(res.found); failureRate > s.cfg.FailureRateThreshold {
			metrics.ScrapePagesTotal.WithLabelValues("error").Inc()
			return entries, skipped, NewError(KindStructureChanged, page,
				fmt.Errorf("%d of %d entries failed to parse", res.skipped, res.found))
		}

		metrics.ScrapePagesTotal.WithLabelValues("ok").Inc()
		metrics.ScrapeEntriesTotal.Add(float64(len(res.entries)))
		metrics.ScrapeEntriesSkipped.Add(float64(res.skipped))
		entries = append(entries, res.entries...)
		skipped += res.skipped

		logging.Debug().
			Int("page", page).
			Int("entries", len(res.entries)).
			Int("skipped", res.skipped).
			Msg("Parsed history page")

		if !res.hasNext {
			break
		}
	}

	logging.Info().Int("entries", len(entries)).Int("skipped", skipped).Msg("History scrape complete")
	return entries, skipped, nil
}

// fetchPage retrieves a single page through the circuit breaker with a
// per-page timeout.
func (s *Scraper) fetchPage(ctx context.Context, session PageFetcher, url string) (string, error) {
	html, err := s.breaker.Execute(func() (string, error) {
		pageCtx, cancel := context.WithTimeout(ctx, s.cfg.PageTimeout)
		defer cancel()
		return session.PageHTML(pageCtx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues("history-pages", "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues("history-pages", "failure").Inc()
		}
		return "", err
	}
	metrics.CircuitBreakerRequests.WithLabelValues("history-pages", "success").Inc()
	return html, nil
}

// historyPageURL builds the watched-movies listing URL. The query pins
// the watched filter and newest-first order so pagination stays stable.
func (s *Scraper) historyPageURL(userID string, page int) string {
	return fmt.Sprintf("%s/user/%s/movie/?sort=new&filter=watched&per=all&page=%d",
		s.cfg.BaseURL, userID, page)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
