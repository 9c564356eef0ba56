// Package season simulates batting seasons by sampling plate appearances.
package season

import "github.com/okian/batsim/internal/domain/model"

// Source yields uniform draws in [0, 1). *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	Float64() float64
}

// Draw samples one outcome. Outcomes are walked in sampling order and the
// first whose cumulative probability exceeds the draw wins. If rounding
// leaves the draw above every cumulative value the result is IPO.
func Draw(rng Source, p model.Probabilities) model.Outcome {
	r := rng.Float64()
	var cum float64
	for _, o := range model.Outcomes {
		cum += p[o]
		if r < cum {
			return o
		}
	}
	return model.IPO
}

// Simulate plays numPA plate appearances and returns the counts.
func Simulate(rng Source, numPA int, p model.Probabilities) model.SeasonOutcome {
	var s model.SeasonOutcome
	if numPA <= 0 {
		return s
	}
	for range numPA {
		s.Counts[Draw(rng, p)]++
	}
	s.H = s.Counts[model.HR] + s.Counts[model.Double] + s.Counts[model.Single]
	s.OUT = s.Counts[model.K] + s.Counts[model.IPO]
	s.AB = s.H + s.OUT
	s.PA = numPA
	return s
}

// DeriveStats computes rate statistics from a season's counts. Zero
// denominators yield zero rates.
func DeriveStats(o model.SeasonOutcome) model.SeasonStats {
	hr := float64(o.Counts[model.HR])
	doubles := float64(o.Counts[model.Double])
	singles := float64(o.Counts[model.Single])
	bb := float64(o.Counts[model.BB])
	hbp := float64(o.Counts[model.HBP])
	k := float64(o.Counts[model.K])
	h, ab, pa := float64(o.H), float64(o.AB), float64(o.PA)

	st := model.SeasonStats{
		HR: hr, Doubles: doubles, Singles: singles,
		BB: bb, HBP: hbp, K: k,
		H: h, AB: ab, PA: pa, OUT: float64(o.OUT),
	}
	if ab > 0 {
		st.BA = h / ab
		st.SLG = (singles + 2*doubles + 4*hr) / ab
	}
	if pa > 0 {
		st.OBP = (h + bb + hbp) / pa
		st.KRate = k / pa
		st.BBRate = bb / pa
	}
	st.OPS = st.OBP + st.SLG
	return st
}

// Run simulates seasons seasons of numPA each and returns their mean stats.
func Run(rng Source, seasons, numPA int, p model.Probabilities) model.SeasonStats {
	var acc Accumulator
	for range seasons {
		acc.Add(DeriveStats(Simulate(rng, numPA, p)))
	}
	return acc.Mean()
}
