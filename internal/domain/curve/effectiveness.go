package curve

import "math"

// Effectiveness maps value onto (-1, 1) with tanh((value-midpoint)/scale).
// When positive is false the sign is flipped. A zero scale yields 0.
func Effectiveness(value, midpoint, scale float64, positive bool) float64 {
	if scale == 0 {
		return 0
	}
	e := math.Tanh((value - midpoint) / scale)
	if !positive {
		return -e
	}
	return e
}

// RateFromEffectiveness moves base toward maxRate for eff >= 0 and toward
// minRate for eff < 0, proportionally to |eff|. The result is not clamped.
func RateFromEffectiveness(base, minRate, maxRate, eff float64) float64 {
	if eff >= 0 {
		return base + eff*(maxRate-base)
	}
	return base + eff*(base-minRate)
}

// Modifier is a multiplicative tanh adjustment centered on Midpoint.
type Modifier struct {
	Midpoint  float64 `json:"midpoint" koanf:"midpoint"`
	Scale     float64 `json:"scale" koanf:"scale"`
	MaxImpact float64 `json:"max_impact" koanf:"max_impact"`
}

// Factor returns 1 + Effectiveness(v)*MaxImpact.
func (m Modifier) Factor(v float64) float64 {
	return 1 + Effectiveness(v, m.Midpoint, m.Scale, true)*m.MaxImpact
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
