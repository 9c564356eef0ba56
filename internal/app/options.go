package service

import (
	"fmt"

	"github.com/okian/batsim/internal/adapters/players"
	"github.com/okian/batsim/internal/config"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/okian/batsim/internal/domain/search"
	"github.com/okian/batsim/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModel sets the probability model.
func WithModel(m *probability.Model) Option {
	return func(s *Service) {
		if m != nil {
			s.model = m
		}
	}
}

// WithSearch sets the two-stage search configuration.
func WithSearch(cfg search.Config) Option {
	return func(s *Service) {
		s.search = cfg
	}
}

// WithSearchDelta sets the half-width of the search box around an anchor.
func WithSearchDelta(delta float64) Option {
	return func(s *Service) {
		if delta >= 0 {
			s.delta = delta
		}
	}
}

// WithSeasonPA sets the PA used when a target carries none.
func WithSeasonPA(pa int) Option {
	return func(s *Service) {
		if pa > 0 {
			s.seasonPA = pa
		}
	}
}

// WithQueueSize caps the number of stage-1 trials per calibration.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the in-flight calibration set.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithFinalSeasons sets the length of confirmation runs.
func WithFinalSeasons(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.finalSeasons = n
		}
	}
}

// WithSweepMaxSeasons caps the seasons per sweep point.
func WithSweepMaxSeasons(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sweepMaxSeasons = n
		}
	}
}

// WithPlayers sets the reference table instead of the embedded one.
func WithPlayers(t *players.Table) Option {
	return func(s *Service) {
		s.table = t
	}
}

// WithAtBatSeed fixes the seed of the single at-bat stream. Zero keeps the
// per-process random seed.
func WithAtBatSeed(seed uint64) Option {
	return func(s *Service) {
		s.atBatSeed = seed
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// FromConfig translates a loaded configuration into service options.
func FromConfig(cfg *config.Config) ([]Option, error) {
	params, err := cfg.Model.Params(cfg.HBPDefault)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	return []Option{
		WithModel(probability.New(params)),
		WithSearch(cfg.Search()),
		WithSearchDelta(cfg.SearchDelta),
		WithSeasonPA(cfg.SeasonPA),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithFinalSeasons(cfg.FinalSeasons),
		WithSweepMaxSeasons(cfg.SweepMaxSeasons),
		WithAtBatSeed(cfg.AtBatSeed),
	}, nil
}
