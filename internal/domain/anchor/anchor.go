// Package anchor derives starting abilities from expected batting metrics
// using league percentile benchmarks.
package anchor

import (
	"github.com/okian/batsim/internal/domain/curve"
	"github.com/okian/batsim/internal/domain/model"
)

// Benchmark holds a metric's league values at the 1st, 50th and 99th
// percentiles.
type Benchmark struct {
	PR1  float64 `json:"pr1" yaml:"pr1"`
	PR50 float64 `json:"pr50" yaml:"pr50"`
	PR99 float64 `json:"pr99" yaml:"pr99"`
}

// Scale holds the attribute scores the percentiles map to.
type Scale struct {
	PR1  float64 `json:"pr1" yaml:"pr1"`
	PR50 float64 `json:"pr50" yaml:"pr50"`
	PR99 float64 `json:"pr99" yaml:"pr99"`
}

// Map converts xBA, xSLG and xwOBA into HIT, POW and EYE.
type Map struct {
	XBA   Benchmark `json:"xba" yaml:"xba"`
	XSLG  Benchmark `json:"xslg" yaml:"xslg"`
	XWOBA Benchmark `json:"xwoba" yaml:"xwoba"`
	Scale Scale     `json:"scale" yaml:"scale"`
}

// DefaultMap returns the league benchmarks the model was tuned against.
func DefaultMap() Map {
	return Map{
		XBA:   Benchmark{PR1: 0.200, PR50: 0.250, PR99: 0.330},
		XSLG:  Benchmark{PR1: 0.310, PR50: 0.400, PR99: 0.640},
		XWOBA: Benchmark{PR1: 0.260, PR50: 0.320, PR99: 0.430},
		Scale: Scale{PR1: 40, PR50: 70, PR99: 99},
	}
}

// Abilities maps expected metrics onto the attribute scale. HIT comes from
// xBA, POW from xSLG and EYE from xwOBA.
func (m Map) Abilities(xBA, xSLG, xwOBA float64) model.Attributes {
	return model.Attributes{
		POW: m.Score(xSLG, m.XSLG),
		HIT: m.Score(xBA, m.XBA),
		EYE: m.Score(xwOBA, m.XWOBA),
	}
}

// Score maps one metric value. Below PR1 it is floored at the PR1 score;
// above PR99 it extends the PR50-PR99 slope. The result is clamped to
// [0, 150].
func (m Map) Score(v float64, b Benchmark) float64 {
	s := m.Scale
	var score float64
	switch {
	case v <= b.PR1:
		score = s.PR1
	case v <= b.PR50:
		if b.PR50 == b.PR1 {
			score = s.PR50
		} else {
			score = s.PR1 + (s.PR50-s.PR1)*(v-b.PR1)/(b.PR50-b.PR1)
		}
	case b.PR99 == b.PR50:
		score = s.PR99
	default:
		score = s.PR50 + (s.PR99-s.PR50)*(v-b.PR50)/(b.PR99-b.PR50)
	}
	return curve.Clamp(score, 0, model.MaxAttribute)
}
