// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package api

import (
	"net/http"
	"time"
)

// StatsSummary returns catalog totals, per-method and per-year counts,
// the average rating and the last successful sync time.
func (h *Handler) StatsSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	summary, err := h.catalog.StatsSummary(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute statistics", err)
		return
	}

	// Last sync lives with the credential record; its absence is not an
	// error for the stats view.
	if view, err := h.credentials.Describe(r.Context()); err == nil && view != nil {
		summary.LastSync = view.LastSync
	}

	respondSuccess(w, http.StatusOK, summary, start)
}
