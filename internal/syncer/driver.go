// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package syncer

import (
	"context"

	"github.com/tomtom215/reelsync/internal/browser"
)

// rodDriver adapts *browser.Driver to the Driver interface.
type rodDriver struct {
	d *browser.Driver
}

// NewRodDriver wraps the rod-based browser driver.
func NewRodDriver(d *browser.Driver) Driver {
	return rodDriver{d: d}
}

func (r rodDriver) Login(ctx context.Context, email, password string) (Session, error) {
	session, err := r.d.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return session, nil
}
