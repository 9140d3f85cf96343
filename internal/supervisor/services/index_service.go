// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// IndexWarmer builds the similarity index on demand. *recommend.Engine
// satisfies it.
type IndexWarmer interface {
	WarmIndex(ctx context.Context) error
}

// IndexWarmupService builds the similarity index in the background so the
// first content query does not pay for it. The engine keeps the outcome for
// its lifetime, so the service runs once and then asks not to be
// restarted, whether the build succeeded or failed.
type IndexWarmupService struct {
	warmer IndexWarmer
	logger zerolog.Logger
	name   string
}

// NewIndexWarmupService creates the warm-up service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIndexWarmupService(warmer IndexWarmer, logger zerolog.Logger) *IndexWarmupService {
	return &IndexWarmupService{
		warmer: warmer,
		logger: logger.With().Str("service", "index-warmup").Logger(),
		name:   "index-warmup",
	}
}

// Serve implements suture.Service.
func (s *IndexWarmupService) Serve(ctx context.Context) error {
	start := time.Now()

	err := s.warmer.WarmIndex(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		// Content queries answer 503 from here on; the other strategies
		// are unaffected.
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("similarity index unavailable")
		return suture.ErrDoNotRestart
	}

	s.logger.Info().Dur("duration", time.Since(start)).Msg("similarity index warm")
	return suture.ErrDoNotRestart
}

// String names the service in supervisor events.
func (s *IndexWarmupService) String() string {
	return s.name
}
