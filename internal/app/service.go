// Package service wires the probability model, season simulator and
// calibration search into the operations the HTTP API and CLI expose.
package service

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/okian/batsim/internal/adapters/players"
	"github.com/okian/batsim/internal/domain/anchor"
	"github.com/okian/batsim/internal/domain/dedupe"
	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/okian/batsim/internal/domain/scoring"
	"github.com/okian/batsim/internal/domain/search"
	"github.com/okian/batsim/internal/domain/season"
	"github.com/okian/batsim/internal/report"
	"github.com/okian/batsim/pkg/logger"
	"github.com/okian/batsim/pkg/metrics"
)

// Service runs simulations and calibrations.
type Service struct {
	mu sync.RWMutex

	// Core components
	model   *probability.Model
	table   *players.Table
	deduper dedupe.Deduper

	// Configuration
	search          search.Config
	delta           float64
	seasonPA        int
	queueSize       int
	dedupeSize      int
	finalSeasons    int
	sweepMaxSeasons int

	// State
	started bool
	base    context.Context
	stop    context.CancelFunc
	atBats  atomic.Uint64
	running atomic.Int64
	done    atomic.Int64
	failed  atomic.Int64

	atBatSeed uint64

	logOnce sync.Once
	logger  logger.Logger
}

// New constructs a Service with default configuration. It is usable without
// Start except for the reference-data operations.
func New(opts ...Option) *Service {
	s := &Service{
		model: probability.Default(),
		search: search.Config{
			StageOne: search.Stage{
				Iterations: 1500,
				Seasons:    15,
				Weights: map[string]float64{
					scoring.KeyBA: 1.5, scoring.KeyOBP: 1.8, scoring.KeySLG: 1.5, scoring.KeyHR: 2.0,
					scoring.KeyOPS: 1.0, scoring.KeyBB: 0.2, scoring.KeyK: 0.2,
				},
				Penalty: 0.01,
			},
			StageTwo: search.Stage{
				Seasons: 40,
				Weights: map[string]float64{
					scoring.KeyBA: 1.5, scoring.KeyOBP: 1.8, scoring.KeySLG: 1.5, scoring.KeyHR: 2.0,
					scoring.KeyBB: 0.8, scoring.KeyK: 0.8,
				},
				Penalty: 0.075,
			},
			TopN:    100,
			Workers: runtime.NumCPU(),
			Seed:    1,
		},
		delta:           30,
		seasonPA:        600,
		queueSize:       10_000,
		dedupeSize:      1024,
		finalSeasons:    200,
		sweepMaxSeasons: 500,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.atBatSeed == 0 {
		s.atBatSeed = rand.Uint64()
	}
	s.base, s.stop = context.WithCancel(context.Background())
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start loads the reference table unless one was supplied.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.table == nil {
		t, err := players.Load()
		if err != nil {
			return fmt.Errorf("load reference data: %w", err)
		}
		s.table = t
	}
	s.started = true
	s.log().Info(ctx, "calibration service started",
		logger.Int("workers", s.search.Workers),
		logger.Int("top_n", s.search.TopN),
		logger.Int("stage_one_iterations", s.search.StageOne.Iterations),
		logger.Int("players", len(s.table.Players)),
	)
	return nil
}

// Stop aborts in-flight calibrations.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.stop()
	s.started = false
	s.log().Info(context.Background(), "calibration service stopped")
}

func (s *Service) log() logger.Logger {
	s.logOnce.Do(func() {
		if s.logger == nil {
			s.logger = logger.Get().Named("service")
		}
	})
	return s.logger
}

// Model returns the probability model in use.
func (s *Service) Model() *probability.Model { return s.model }

// Search returns the calibration search configuration.
func (s *Service) Search() search.Config { return s.search }

// FinalSeasons returns the length of confirmation runs.
func (s *Service) FinalSeasons() int { return s.finalSeasons }

// Probabilities returns the PA outcome distribution for a.
func (s *Service) Probabilities(_ context.Context, a model.Attributes, hbpRate float64) (model.Probabilities, error) {
	if err := validateAttributes(a); err != nil {
		return model.Probabilities{}, err
	}
	return s.model.Probabilities(a.POW, a.HIT, a.EYE, hbpRate), nil
}

// AtBat draws a single plate appearance for a.
func (s *Service) AtBat(ctx context.Context, a model.Attributes, hbpRate float64) (model.Outcome, model.Probabilities, error) {
	p, err := s.Probabilities(ctx, a, hbpRate)
	if err != nil {
		return 0, p, err
	}
	rng := rand.New(rand.NewPCG(s.atBatSeed, s.atBats.Add(1)))
	o := season.Draw(rng, p)
	metrics.RecordAtBat(o.String())
	return o, p, nil
}

// Simulate runs seasons seasons for a against target and returns the mean
// stats. Zero seasons uses the confirmation length.
func (s *Service) Simulate(ctx context.Context, a model.Attributes, target model.TargetProfile, seasons int) (model.SeasonStats, error) {
	if err := validateAttributes(a); err != nil {
		return model.SeasonStats{}, err
	}
	if seasons <= 0 {
		seasons = s.finalSeasons
	}
	target = s.normalizeTarget(target)
	stats := report.Simulate(s.model, a, target, seasons, s.search.Seed)
	recordSimulated(seasons, target.PA, stats)
	s.log().Debug(ctx, "simulated",
		logger.String("attributes", a.String()),
		logger.Int("seasons", seasons),
		logger.Float64("ops", stats.OPS),
	)
	return stats, nil
}

// Sweep varies one attribute and simulates each point.
func (s *Service) Sweep(ctx context.Context, req report.SweepRequest) ([]report.SweepRow, error) {
	if req.Seasons > s.sweepMaxSeasons {
		return nil, fmt.Errorf("%w: seasons %d exceeds %d", report.ErrInvalidSweep, req.Seasons, s.sweepMaxSeasons)
	}
	if req.Seed == 0 {
		req.Seed = s.search.Seed
	}
	rows, err := report.Sweep(ctx, s.model, req)
	if err != nil {
		return nil, err
	}
	metrics.RecordSeasons(req.Seasons*len(rows), req.PA)
	return rows, nil
}

// Players returns the reference players.
func (s *Service) Players(_ context.Context) ([]players.Player, error) {
	t, err := s.reference()
	if err != nil {
		return nil, err
	}
	return t.Players, nil
}

// Player finds a reference player by full name or surname.
func (s *Service) Player(_ context.Context, name string) (players.Player, error) {
	t, err := s.reference()
	if err != nil {
		return players.Player{}, err
	}
	return t.Player(name)
}

// Archetypes returns the synthetic reference batters.
func (s *Service) Archetypes(_ context.Context) ([]players.Archetype, error) {
	t, err := s.reference()
	if err != nil {
		return nil, err
	}
	return t.Archetypes, nil
}

// Anchor maps expected metrics to starting abilities using the reference
// benchmarks, or the league defaults before Start.
func (s *Service) Anchor(m players.Metrics) model.Attributes {
	bm := anchor.DefaultMap()
	if t, err := s.reference(); err == nil {
		bm = t.Benchmarks
	}
	return bm.Abilities(m.XBA, m.XSLG, m.XWOBA)
}

// Ranges returns the search box around a.
func (s *Service) Ranges(a model.Attributes) model.Ranges {
	return search.RangesAround(a, s.delta)
}

func (s *Service) reference() (*players.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrNoReferenceData
	}
	return s.table, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"started":              s.started,
		"workerCount":          s.search.Workers,
		"topN":                 s.search.TopN,
		"stageOneIterations":   s.search.StageOne.Iterations,
		"calibrationsRunning":  s.running.Load(),
		"calibrationsFinished": s.done.Load(),
		"calibrationsFailed":   s.failed.Load(),
		"atBats":               s.atBats.Load(),
		"inFlight":             s.deduper.Size(),
	}
}

// normalizeTarget fills the PA and HBP rate a target may omit. A zero rate
// with no HBP counted is a batter who is never hit. A negative or NaN rate is
// unknown and falls back to the model default.
func (s *Service) normalizeTarget(t model.TargetProfile) model.TargetProfile {
	if t.PA <= 0 {
		t.PA = s.seasonPA
	}
	unknown := math.IsNaN(t.HBPRate) || t.HBPRate < 0
	switch {
	case (unknown || t.HBPRate == 0) && t.Counts.HBP > 0:
		t.HBPRate = float64(t.Counts.HBP) / float64(t.PA)
	case unknown:
		t.HBPRate = s.model.Params().HBPDefault
	}
	return t
}

func validateAttributes(a model.Attributes) error {
	for _, v := range []float64{a.POW, a.HIT, a.EYE} {
		if math.IsNaN(v) || v < 0 || v > model.MaxAttribute*2 {
			return fmt.Errorf("%w: attributes %s", ErrInvalidInput, a)
		}
	}
	return nil
}

// SeenAndRecord marks a calibration name as in flight. It returns true if
// the name was already running.
func (s *Service) SeenAndRecord(ctx context.Context, name string) bool {
	seen := s.deduper.SeenAndRecord(ctx, dedupe.Key(name))
	if seen {
		metrics.RecordCalibrationDuplicate()
	}
	return seen
}

// Unrecord releases a calibration name.
func (s *Service) Unrecord(ctx context.Context, name string) {
	s.deduper.Unrecord(ctx, dedupe.Key(name))
}

// Size returns the number of calibrations in flight.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}
