// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package services adapts Shelfwise components to suture.Service.
//
// Each service implements Serve(ctx) error and String() string. Serve
// blocks until ctx is cancelled or the work is finished; a service that
// has nothing left to do returns suture.ErrDoNotRestart so the supervisor
// drops it instead of restarting it.
package services
