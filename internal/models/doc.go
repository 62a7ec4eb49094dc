// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

/*
Package models defines the data structures shared across Reelsync.

It is the single source of truth for the catalog's persisted shapes and
the API's wire shapes. The key types:

  - Movie: a catalog entry, deduplicated by external site ID or by
    normalized title plus release year
  - ViewingRecord: one viewing of a movie, either entered manually or
    produced by a sync run
  - ScrapedEntry: a raw watch-history entry as parsed off the site,
    before reconciliation
  - Credential / CredentialView: the stored login secret and its
    display-safe projection (masked email, never the password)
  - SyncOptions / SyncOutcome: the request and structured result of a
    sync run
  - APIResponse / Page: the standard response envelope and offset
    pagination wrapper

Enumerations (ViewingMethod, Mood, RecordSource) carry their validation
sets here so handlers and the database layer agree on legal values.
*/
package models
