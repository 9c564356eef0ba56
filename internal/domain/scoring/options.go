package scoring

import "maps"

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the per-statistic error weights. Keys missing from the
// map contribute nothing.
func WithWeights(w map[string]float64) Option {
	return func(s *Scorer) {
		s.weights = maps.Clone(w)
		if s.weights == nil {
			s.weights = map[string]float64{}
		}
	}
}

// WithAnchorPenalty sets the weight of the distance-from-anchor term.
func WithAnchorPenalty(w float64) Option {
	return func(s *Scorer) {
		if w >= 0 {
			s.penalty = w
		}
	}
}
