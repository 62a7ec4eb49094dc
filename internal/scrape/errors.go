// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package scrape

import (
	"errors"
	"fmt"
)

// Kind separates "the site changed its markup" from "the network or
// browser failed". The first means the parser needs maintenance; the
// second is usually transient.
type Kind string

const (
	// KindStructureChanged means the expected page structure was absent
	// or most entries failed to parse.
	KindStructureChanged Kind = "structure_changed"

	// KindNetworkFailure means a page could not be fetched.
	KindNetworkFailure Kind = "network_failure"
)

// Error reports a failed history scrape.
type Error struct {
	Kind Kind
	Page int
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape failed on page %d (%s): %v", e.Page, e.Kind, e.Err)
	}
	return fmt.Sprintf("scrape failed on page %d (%s)", e.Page, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a scrape Error.
func NewError(kind Kind, page int, err error) *Error {
	return &Error{Kind: kind, Page: page, Err: err}
}

// IsStructureChanged reports whether err is a markup-drift failure.
func IsStructureChanged(err error) bool {
	var scrapeErr *Error
	return errors.As(err, &scrapeErr) && scrapeErr.Kind == KindStructureChanged
}

// IsNetworkFailure reports whether err is a fetch failure.
func IsNetworkFailure(err error) bool {
	var scrapeErr *Error
	return errors.As(err, &scrapeErr) && scrapeErr.Kind == KindNetworkFailure
}
