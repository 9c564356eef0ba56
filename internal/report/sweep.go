// Package report runs direct simulations and attribute sweeps and renders
// them as tables or CSV.
package report

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/okian/batsim/internal/domain/season"
)

// Sweep defaults.
const (
	DefaultFixed   = model.DefaultAnchor
	DefaultSeasons = 100
	DefaultPA      = 600
	maxSweepPoints = 10_000
)

// Attribute names one of the three abilities.
type Attribute string

// Sweepable attributes.
const (
	POW Attribute = "POW"
	HIT Attribute = "HIT"
	EYE Attribute = "EYE"
)

// ParseAttribute accepts POW, HIT or EYE in any case.
func ParseAttribute(s string) (Attribute, error) {
	switch a := Attribute(strings.ToUpper(strings.TrimSpace(s))); a {
	case POW, HIT, EYE:
		return a, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownAttribute)
	}
}

// with returns base with the attribute set to v.
func (a Attribute) with(base model.Attributes, v float64) model.Attributes {
	switch a {
	case POW:
		base.POW = v
	case HIT:
		base.HIT = v
	case EYE:
		base.EYE = v
	}
	return base
}

// SweepRequest varies one attribute while the others stay at Fixed.
type SweepRequest struct {
	Attribute Attribute
	Min       float64
	Max       float64
	Step      float64
	Fixed     float64
	Seasons   int
	PA        int
	HBPRate   float64
	Seed      uint64
}

// DefaultSweep covers the full attribute domain one point at a time.
func DefaultSweep(a Attribute) SweepRequest {
	return SweepRequest{
		Attribute: a,
		Min:       model.MinAttribute,
		Max:       model.MaxAttribute,
		Step:      1,
		Fixed:     DefaultFixed,
		Seasons:   DefaultSeasons,
		PA:        DefaultPA,
		HBPRate:   probability.LeagueHBPRate,
	}
}

// Points returns the attribute values the sweep visits.
func (r SweepRequest) Points() []float64 {
	n := int(math.Floor((r.Max-r.Min)/r.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range n {
		out[i] = r.Min + float64(i)*r.Step
	}
	return out
}

// Validate checks the sweep bounds and sizes.
func (r SweepRequest) Validate() error {
	if _, err := ParseAttribute(string(r.Attribute)); err != nil {
		return err
	}
	switch {
	case r.Step <= 0 || math.IsNaN(r.Step):
		return fmt.Errorf("%w: step must be positive", ErrInvalidSweep)
	case r.Min > r.Max || math.IsNaN(r.Min) || math.IsNaN(r.Max):
		return fmt.Errorf("%w: min %g > max %g", ErrInvalidSweep, r.Min, r.Max)
	case r.Seasons <= 0:
		return fmt.Errorf("%w: seasons must be positive", ErrInvalidSweep)
	case r.PA <= 0:
		return fmt.Errorf("%w: pa must be positive", ErrInvalidSweep)
	case (r.Max-r.Min)/r.Step >= maxSweepPoints:
		return fmt.Errorf("%w: more than %d points", ErrInvalidSweep, maxSweepPoints)
	}
	return nil
}

// SweepRow is the averaged outcome of one sweep point.
type SweepRow struct {
	Value      float64           `json:"value"`
	Attributes model.Attributes  `json:"attributes"`
	Stats      model.SeasonStats `json:"stats"`
}

// Sweep simulates every point of req. Each point draws from its own source
// seeded by (req.Seed, index).
func Sweep(ctx context.Context, m *probability.Model, req SweepRequest) ([]SweepRow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	base := model.Attributes{POW: req.Fixed, HIT: req.Fixed, EYE: req.Fixed}

	points := req.Points()
	rows := make([]SweepRow, 0, len(points))
	for i, v := range points {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sweep %s at %g: %w", req.Attribute, v, err)
		}
		a := req.Attribute.with(base, v)
		p := m.Probabilities(a.POW, a.HIT, a.EYE, req.HBPRate)
		rng := rand.New(rand.NewPCG(req.Seed, uint64(i)))
		rows = append(rows, SweepRow{
			Value:      v,
			Attributes: a,
			Stats:      season.Run(rng, req.Seasons, req.PA, p),
		})
	}
	return rows, nil
}

// Simulate runs seasons seasons for a at the target's PA and HBP rate.
func Simulate(m *probability.Model, a model.Attributes, target model.TargetProfile, seasons int, seed uint64) model.SeasonStats {
	p := m.Probabilities(a.POW, a.HIT, a.EYE, target.HBPRate)
	rng := rand.New(rand.NewPCG(seed, 0))
	return season.Run(rng, seasons, target.PA, p)
}
