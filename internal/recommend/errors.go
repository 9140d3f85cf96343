// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import "errors"

var (
	// ErrInvalidArgument marks a caller mistake such as a non-positive N or
	// an unknown strategy.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexUnavailable is returned by content queries when the similarity
	// index could not be built. It wraps the build error.
	ErrIndexUnavailable = errors.New("similarity index unavailable")
)
