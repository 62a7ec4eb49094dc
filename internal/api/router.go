// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelsync/internal/config"
	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/metrics"
)

// NewRouter builds the chi router with the full middleware stack and all
// API routes.
func NewRouter(handler *Handler, cfg config.APIConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}))

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(cfg.RateLimitReqs, cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP)))

		r.Post("/sync", handler.Sync)

		r.Route("/credential", func(r chi.Router) {
			r.Get("/", handler.CredentialGet)
			r.Put("/", handler.CredentialPut)
			r.Delete("/", handler.CredentialDelete)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", handler.MoviesList)
			r.Post("/", handler.MovieCreate)
			r.Get("/{id}", handler.MovieGet)
			r.Patch("/{id}", handler.MoviePatch)
			r.Delete("/{id}", handler.MovieDelete)
		})

		r.Route("/records", func(r chi.Router) {
			r.Get("/", handler.RecordsList)
			r.Post("/", handler.RecordCreate)
			r.Patch("/{id}", handler.RecordPatch)
			r.Delete("/{id}", handler.RecordDelete)
		})

		r.Get("/stats/summary", handler.StatsSummary)
	})

	return r
}

// requestLogger emits one structured line per request and records the
// duration histogram. The route pattern, not the raw path, labels the
// metric to keep cardinality bounded.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		metrics.ObserveHTTPRequest(r.Method, route, ww.Status(), duration)

		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}
