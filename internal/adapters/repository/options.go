package repository

// Option applies a configuration option to the CandidatePool.
type Option func(*CandidatePool)

// WithMetrics enables or disables Prometheus pool metrics. Enabled by default.
func WithMetrics(enabled bool) Option {
	return func(p *CandidatePool) {
		p.metrics = enabled
	}
}
