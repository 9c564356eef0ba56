// Package model contains domain models passed between layers.
package model

import "strings"

// Outcome identifies one plate-appearance result.
//
// The numeric order is the cumulative sampling order used by the season
// simulator and the at-bat endpoint; it decides which outcome wins at a
// cumulative-probability boundary and must not be reordered.
type Outcome int

// Plate-appearance outcomes in sampling order.
const (
	HR Outcome = iota
	Double
	Single
	BB
	HBP
	K
	IPO
)

// NumOutcomes is the number of modeled outcome kinds.
const NumOutcomes = 7

// Outcomes lists every outcome in sampling order.
var Outcomes = [NumOutcomes]Outcome{HR, Double, Single, BB, HBP, K, IPO}

var outcomeLabels = [NumOutcomes]string{"HR", "2B", "1B", "BB", "HBP", "K", "IPO"}

// String returns the scorebook label, e.g. "2B".
func (o Outcome) String() string {
	if o < 0 || int(o) >= NumOutcomes {
		return "UNKNOWN"
	}
	return outcomeLabels[o]
}

// IsHit reports whether the outcome counts as a hit.
func (o Outcome) IsHit() bool { return o == HR || o == Double || o == Single }

// IsAtBat reports whether the outcome counts as an official at-bat.
func (o Outcome) IsAtBat() bool { return o.IsHit() || o == K || o == IPO }

// ParseOutcome maps a label back to its Outcome. Matching is case-insensitive.
func ParseOutcome(label string) (Outcome, bool) {
	label = strings.ToUpper(strings.TrimSpace(label))
	for i, l := range outcomeLabels {
		if l == label {
			return Outcome(i), true
		}
	}
	return IPO, false
}

// Probabilities is a probability per outcome, indexed by Outcome.
// Producers normalize it so that all values are >= 0 and sum to 1.
type Probabilities [NumOutcomes]float64

// CertainOut is the fallback distribution used when nothing else is defined.
func CertainOut() Probabilities {
	var p Probabilities
	p[IPO] = 1
	return p
}

// Get returns the probability of o.
func (p Probabilities) Get(o Outcome) float64 { return p[o] }

// Sum returns the total probability mass.
func (p Probabilities) Sum() float64 {
	var s float64
	for _, v := range p {
		s += v
	}
	return s
}

// Map returns the vector keyed by outcome label, for JSON responses.
func (p Probabilities) Map() map[string]float64 {
	m := make(map[string]float64, NumOutcomes)
	for _, o := range Outcomes {
		m[o.String()] = p[o]
	}
	return m
}
