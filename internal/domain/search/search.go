// Package search holds the pieces of the two-stage calibration search:
// trial sampling, candidate evaluation and final selection.
package search

import (
	"math/rand/v2"

	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/okian/batsim/internal/domain/scoring"
	"github.com/okian/batsim/internal/domain/season"
)

// Stream selectors keep sampler, stage-1 and stage-2 draws independent.
const (
	samplerStream  = ^uint64(0)
	stageTwoStream = 0x9e3779b97f4a7c15
)

// Stage configures one pass of the search.
type Stage struct {
	Iterations int
	Seasons    int
	Weights    map[string]float64
	Penalty    float64
}

// Scorer builds the scorer for this stage.
func (s Stage) Scorer() *scoring.Scorer {
	return scoring.New(scoring.WithWeights(s.Weights), scoring.WithAnchorPenalty(s.Penalty))
}

// Config configures a full calibration.
type Config struct {
	StageOne Stage
	StageTwo Stage
	TopN     int
	Workers  int
	Seed     uint64
}

// Sampler draws stage-1 trials from a seeded master source. It is not safe
// for concurrent use.
type Sampler struct {
	rng    *rand.Rand
	ranges Ranges
	seed   uint64
	seq    int
}

// NewSampler returns a Sampler over ranges.
func NewSampler(seed uint64, ranges Ranges) *Sampler {
	return &Sampler{
		rng:    rand.New(rand.NewPCG(seed, samplerStream)),
		ranges: ranges,
		seed:   seed,
	}
}

// Next samples the next trial.
func (s *Sampler) Next() model.Trial {
	t := model.Trial{
		Seq: s.seq,
		Attributes: model.Attributes{
			POW: RandomEven(s.rng, s.ranges.POW),
			HIT: RandomEven(s.rng, s.ranges.HIT),
			EYE: RandomEven(s.rng, s.ranges.EYE),
		},
		Seed: s.seed,
	}
	s.seq++
	return t
}

// Result is an evaluated candidate and the mean stats it was scored on.
type Result struct {
	Candidate model.Candidate
	Stats     model.SeasonStats
}

// Evaluator scores attribute triples against one target. It is immutable and
// safe for concurrent use.
type Evaluator struct {
	model  *probability.Model
	target model.TargetProfile
	anchor model.Attributes
}

// NewEvaluator returns an Evaluator for target around anchor.
func NewEvaluator(m *probability.Model, target model.TargetProfile, anchor model.Attributes) *Evaluator {
	return &Evaluator{model: m, target: target, anchor: anchor}
}

// Evaluate simulates seasons seasons for a and scores the mean stats. The
// random stream is fully determined by seed and seq.
func (e *Evaluator) Evaluate(a model.Attributes, seq, seasons int, sc *scoring.Scorer, seed uint64) Result {
	p := e.model.Probabilities(a.POW, a.HIT, a.EYE, e.target.HBPRate)
	rng := rand.New(rand.NewPCG(seed, uint64(seq)))
	stats := season.Run(rng, seasons, e.target.PA, p)
	return Result{
		Candidate: model.Candidate{
			Attributes: a,
			Error:      sc.Score(stats, e.target, a, e.anchor),
			Seq:        seq,
		},
		Stats: stats,
	}
}

// Trial evaluates a stage-1 trial.
func (e *Evaluator) Trial(t model.Trial, st Stage, sc *scoring.Scorer) Result {
	return e.Evaluate(t.Attributes, t.Seq, st.Seasons, sc, t.Seed)
}

// Refine evaluates a retained candidate for stage 2.
func (e *Evaluator) Refine(c model.Candidate, st Stage, sc *scoring.Scorer, seed uint64) Result {
	return e.Evaluate(c.Attributes, c.Seq, st.Seasons, sc, seed^stageTwoStream)
}

// SelectBest returns the result with the strictly lowest error. Ties keep
// the earliest. It reports false for an empty slice.
func SelectBest(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Candidate.Error < best.Candidate.Error {
			best = r
		}
	}
	return best, true
}
