package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/batsim/internal/adapters/mq/queue"
	"github.com/okian/batsim/internal/adapters/mq/worker"
	"github.com/okian/batsim/internal/adapters/repository"
	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/internal/domain/scoring"
	"github.com/okian/batsim/internal/domain/search"
	"github.com/okian/batsim/pkg/logger"
	"github.com/okian/batsim/pkg/metrics"
)

// Metric labels for the two stages.
const (
	stageOneLabel = "one"
	stageTwoLabel = "two"
)

// progressSteps is how many progress lines stage 1 logs.
const progressSteps = 20

// trialEvaluator adapts search.Evaluator to worker.Evaluator.
type trialEvaluator struct {
	ev     *search.Evaluator
	stage  search.Stage
	scorer *scoring.Scorer
	pa     int
}

func (t *trialEvaluator) Evaluate(ctx context.Context, tr worker.Trial) (model.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return model.Candidate{}, err
	}
	r := t.ev.Trial(tr, t.stage, t.scorer)
	metrics.RecordTrialEvaluated(stageOneLabel)
	metrics.RecordSeasons(t.stage.Seasons, t.pa)
	return r.Candidate, nil
}

// progressSink forwards to the pool and logs the best retained error every
// step evaluations.
type progressSink struct {
	pool  *repository.CandidatePool
	total int
	step  int64
	seen  atomic.Int64
	log   logger.Logger
}

func (p *progressSink) Offer(ctx context.Context, c model.Candidate) bool {
	kept := p.pool.Offer(ctx, c)
	n := p.seen.Add(1)
	if n%p.step == 0 {
		best := p.pool.Sorted()
		fields := []logger.Field{logger.Int("done", int(n)), logger.Int("total", p.total)}
		if len(best) > 0 {
			fields = append(fields, logger.Float64("best_error", best[0].Error))
		}
		p.log.Info(ctx, "stage one progress", fields...)
	}
	return kept
}

// CalibratePlayer calibrates a reference player around the anchor derived
// from their expected metrics.
func (s *Service) CalibratePlayer(ctx context.Context, name string) (model.Calibration, error) {
	p, err := s.Player(ctx, name)
	if err != nil {
		return model.Calibration{}, err
	}
	a := s.Anchor(p.Metrics)
	return s.Calibrate(ctx, a, p.Target, s.Ranges(a))
}

// Calibrate searches ranges for the triple whose simulated seasons best match
// target, penalizing distance from anchor. The result is deterministic for a
// given seed regardless of the worker count. Callers that must not run the
// same name twice guard with SeenAndRecord.
func (s *Service) Calibrate(ctx context.Context, anchor model.Attributes, target model.TargetProfile, ranges model.Ranges) (model.Calibration, error) {
	cfg := s.search
	if cfg.StageOne.Iterations > s.queueSize {
		return model.Calibration{}, fmt.Errorf("%w: %d exceeds %d", ErrTooManyTrials, cfg.StageOne.Iterations, s.queueSize)
	}
	ranges, err := search.ClampRanges(ranges)
	if err != nil {
		return model.Calibration{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	target = s.normalizeTarget(target)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	detach := context.AfterFunc(s.base, cancel)
	defer detach()

	s.running.Add(1)
	defer s.running.Add(-1)

	start := time.Now()
	cal := model.Calibration{
		RunID:  uuid.NewString(),
		Name:   target.Name,
		Anchor: anchor,
		Ranges: ranges,
	}
	log := s.log().With(logger.String("run_id", cal.RunID), logger.String("player", target.Name))
	log.Info(ctx, "calibration started",
		logger.String("anchor", anchor.String()),
		logger.Int("pa", target.PA),
		logger.Float64("hbp_rate", target.HBPRate),
	)

	ev := search.NewEvaluator(s.model, target, anchor)

	candidates, err := s.stageOne(ctx, log, ev, ranges, target.PA, &cal.StageOne)
	if err != nil {
		return s.fail(ctx, log, err)
	}
	best, err := s.stageTwo(ctx, log, ev, candidates, target.PA, &cal.StageTwo)
	if err != nil {
		return s.fail(ctx, log, err)
	}

	cal.Best = best.Candidate.Attributes
	cal.Error = best.Candidate.Error
	cal.Stats = best.Stats

	s.done.Add(1)
	metrics.RecordCalibration(cal.Error, time.Since(start))
	log.Info(ctx, "calibration finished",
		logger.String("best", cal.Best.String()),
		logger.Float64("error", cal.Error),
		logger.Duration("took", time.Since(start)),
	)
	return cal, nil
}

func (s *Service) fail(ctx context.Context, log logger.Logger, err error) (model.Calibration, error) {
	s.failed.Add(1)
	metrics.RecordCalibrationFailed()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		metrics.RecordErrorByComponent("calibration", "cancelled")
		log.Warn(ctx, "calibration aborted", logger.Error(err))
	} else {
		metrics.RecordErrorByComponent("calibration", "failed")
		log.Error(ctx, "calibration failed", logger.Error(err))
	}
	return model.Calibration{}, err
}

// stageOne samples every trial up front, fans them out over a worker pool
// and returns the retained candidates best first.
func (s *Service) stageOne(ctx context.Context, log logger.Logger, ev *search.Evaluator, ranges model.Ranges, pa int, sum *model.StageSummary) ([]model.Candidate, error) {
	st := s.search.StageOne
	start := time.Now()

	pool, err := repository.NewCandidatePool(s.search.TopN, repository.WithMetrics(true))
	if err != nil {
		return nil, fmt.Errorf("stage one: %w", err)
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(max(s.queueSize, 1)))
	sampler := search.NewSampler(s.search.Seed, ranges)
	for range st.Iterations {
		if !q.Enqueue(ctx, sampler.Next()) {
			_ = q.Close()
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("stage one: %w", err)
			}
			return nil, fmt.Errorf("stage one: %w", ErrTooManyTrials)
		}
	}
	_ = q.Close()

	sink := &progressSink{
		pool:  pool,
		total: st.Iterations,
		step:  int64(max(st.Iterations/progressSteps, 1)),
		log:   log,
	}
	te := &trialEvaluator{ev: ev, stage: st, scorer: st.Scorer(), pa: pa}
	wp := worker.NewPool(s.search.Workers, q, te, sink, worker.WithLogger(log))

	log.Info(ctx, "stage one started",
		logger.Int("trials", st.Iterations),
		logger.Int("seasons", st.Seasons),
		logger.Int("workers", wp.Size()),
	)
	wp.Start(ctx)
	wp.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("stage one: %w", err)
	}
	if err := wp.Err(); err != nil {
		return nil, fmt.Errorf("stage one: %w", err)
	}

	out := pool.Sorted()
	*sum = model.StageSummary{
		Trials:   int(wp.Processed()),
		Retained: len(out),
		Seasons:  st.Seasons,
		Duration: time.Since(start),
	}
	metrics.RecordStageDuration(stageOneLabel, sum.Duration)
	log.Info(ctx, "stage one finished",
		logger.Int("retained", sum.Retained),
		logger.Duration("took", sum.Duration),
	)
	return out, nil
}

// stageTwo re-evaluates candidates with longer runs and returns the best.
func (s *Service) stageTwo(ctx context.Context, log logger.Logger, ev *search.Evaluator, candidates []model.Candidate, pa int, sum *model.StageSummary) (search.Result, error) {
	if len(candidates) == 0 {
		return search.Result{}, fmt.Errorf("stage two: %w", ErrNoCandidates)
	}
	st := s.search.StageTwo
	sc := st.Scorer()
	start := time.Now()

	log.Info(ctx, "stage two started",
		logger.Int("candidates", len(candidates)),
		logger.Int("seasons", st.Seasons),
	)

	results := make([]search.Result, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.search.Workers, 1))
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ev.Refine(c, st, sc, s.search.Seed)
			metrics.RecordTrialEvaluated(stageTwoLabel)
			metrics.RecordSeasons(st.Seasons, pa)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return search.Result{}, fmt.Errorf("stage two: %w", err)
	}

	best, _ := search.SelectBest(results)
	*sum = model.StageSummary{
		Trials:   len(results),
		Retained: 1,
		Seasons:  st.Seasons,
		Duration: time.Since(start),
	}
	metrics.RecordStageDuration(stageTwoLabel, sum.Duration)
	log.Info(ctx, "stage two finished",
		logger.String("best", best.Candidate.Attributes.String()),
		logger.Float64("error", best.Candidate.Error),
		logger.Duration("took", sum.Duration),
	)
	return best, nil
}

// recordSimulated exports the outcome totals of a direct simulation.
func recordSimulated(seasons, pa int, mean model.SeasonStats) {
	metrics.RecordSeasons(seasons, pa)
	n := float64(seasons)
	metrics.RecordOutcomes(model.HR.String(), mean.HR*n)
	metrics.RecordOutcomes(model.Double.String(), mean.Doubles*n)
	metrics.RecordOutcomes(model.Single.String(), mean.Singles*n)
	metrics.RecordOutcomes(model.BB.String(), mean.BB*n)
	metrics.RecordOutcomes(model.HBP.String(), mean.HBP*n)
	metrics.RecordOutcomes(model.K.String(), mean.K*n)
	metrics.RecordOutcomes(model.IPO.String(), (mean.OUT-mean.K)*n)
}
