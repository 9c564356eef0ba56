// Package scoring measures how far simulated statistics are from a target
// season.
package scoring

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/batsim/internal/domain/model"
)

// Weight keys.
const (
	KeyBA  = "BA"
	KeyOBP = "OBP"
	KeySLG = "SLG"
	KeyOPS = "OPS"
	KeyHR  = "HR"
	KeyBB  = "BB"
	KeyK   = "K"
)

// Keys is the set of statistics a Scorer can weigh.
var Keys = []string{KeyBA, KeyOBP, KeySLG, KeyOPS, KeyHR, KeyBB, KeyK}

// anchorNorm normalizes the anchor term when an anchor value is zero.
const anchorNorm = model.DefaultAnchor

// ValidateWeights rejects unknown keys and negative weights.
func ValidateWeights(w map[string]float64) error {
	for k, v := range w {
		if !slices.Contains(Keys, k) {
			return fmt.Errorf("%q: %w", k, ErrUnknownKey)
		}
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%q=%g: %w", k, v, ErrNegativeWeight)
		}
	}
	return nil
}

// Scorer computes weighted relative squared error plus an anchor penalty.
// It is immutable after construction and safe for concurrent use.
type Scorer struct {
	weights map[string]float64
	penalty float64
}

// New creates a Scorer. Without options every weight is zero.
func New(opts ...Option) *Scorer {
	s := &Scorer{weights: map[string]float64{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weight returns the weight of key, or 0 when unset.
func (s *Scorer) Weight(key string) float64 { return s.weights[key] }

// Penalty returns the anchor penalty weight.
func (s *Scorer) Penalty() float64 { return s.penalty }

// Score returns sqrt(statistic error + penalty * anchor deviation).
//
// Ratio terms compare BA, OBP and SLG, plus OPS only when OPS carries a
// weight. Count terms compare HR, BB and K. A term is skipped when its weight
// or its target is zero, except K which falls back to K rate when the target
// count is missing.
func (s *Scorer) Score(sim model.SeasonStats, target model.TargetProfile, current, anchor model.Attributes) float64 {
	var total float64

	ratios := []struct {
		key    string
		sim    float64
		target float64
	}{
		{KeyBA, sim.BA, target.Ratios.BA},
		{KeyOBP, sim.OBP, target.Ratios.OBP},
		{KeySLG, sim.SLG, target.Ratios.SLG},
		{KeyOPS, sim.OPS, target.Ratios.OPS},
	}
	for _, r := range ratios {
		total += s.term(r.key, r.sim, r.target)
	}

	total += s.term(KeyHR, sim.HR, float64(target.Counts.HR))
	total += s.term(KeyBB, sim.BB, float64(target.Counts.BB))
	if target.Counts.K > 0 {
		total += s.term(KeyK, sim.K, float64(target.Counts.K))
	} else {
		total += s.term(KeyK, sim.KRate, target.Ratios.KRate)
	}

	total += s.penalty * Deviation(current, anchor)
	return math.Sqrt(total)
}

func (s *Scorer) term(key string, sim, target float64) float64 {
	w := s.weights[key]
	if w == 0 || target <= 0 {
		return 0
	}
	d := (sim - target) / target
	return w * d * d
}

// Deviation is the squared relative distance of current from anchor summed
// over the three attributes.
func Deviation(current, anchor model.Attributes) float64 {
	return dev(current.POW, anchor.POW) + dev(current.HIT, anchor.HIT) + dev(current.EYE, anchor.EYE)
}

func dev(cur, anchor float64) float64 {
	norm := anchor
	if norm == 0 {
		norm = anchorNorm
	}
	d := (cur - anchor) / norm
	return d * d
}
