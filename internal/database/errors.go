// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package database

import "errors"

// ErrNotFound is returned when a movie or viewing record does not exist.
var ErrNotFound = errors.New("not found")
