// Package probability converts POW/HIT/EYE into plate-appearance outcome
// probabilities.
package probability

import (
	"math"

	"github.com/okian/batsim/internal/domain/curve"
	"github.com/okian/batsim/internal/domain/model"
)

// Model evaluates the attribute-to-probability mapping. It is immutable and
// safe for concurrent use.
type Model struct {
	p Params
}

// New returns a Model over p.
func New(p Params) *Model {
	return &Model{p: p}
}

// Default returns a Model over DefaultParams.
func Default() *Model {
	return New(DefaultParams())
}

// Params returns the model's parameters.
func (m *Model) Params() Params { return m.p }

// BaseHRRate is the HR rate per PA from POW alone, before modifiers.
func (m *Model) BaseHRRate(pow float64) float64 {
	return curve.Interpolate(pow, m.p.HRCurve)
}

// BABIP is the hit rate on balls in play from HIT.
func (m *Model) BABIP(hit float64) float64 {
	return m.p.BABIP.clamp(curve.Interpolate(hit, m.p.BABIPCurve))
}

// BBRate is the walk rate per PA from EYE.
func (m *Model) BBRate(eye float64) float64 {
	return m.p.BB.clamp(curve.Interpolate(eye, m.p.BBCurve))
}

// KRate is the strikeout rate per PA. Negative effectiveness pulls toward
// the minimum cap.
func (m *Model) KRate(eye, hit float64) float64 {
	eyeEff := curve.Interpolate(eye, m.p.KEyeCurve)
	hitEff := curve.Effectiveness(hit, m.p.KHit.Midpoint, m.p.KHit.Scale, false)
	eff := (1-m.p.KHitWeight)*eyeEff + m.p.KHitWeight*hitEff
	return m.p.K.clamp(curve.RateFromEffectiveness(m.p.KMid, m.p.K.Min, m.p.K.Max, eff))
}

// HRRate is the modified HR rate per PA.
func (m *Model) HRRate(pow, hit, eye float64) float64 {
	hr := m.BaseHRRate(pow) * m.p.HREye.Factor(eye) * m.p.HRHit.Factor(hit)
	return curve.Clamp(hr, 0, m.p.HRMax)
}

// DoubleShare is the fraction of non-HR hits on balls in play that go for doubles.
func (m *Model) DoubleShare(pow, hit float64) float64 {
	eff := m.p.XBHPowWeight*curve.Effectiveness(pow, m.p.XBHPow.Midpoint, m.p.XBHPow.Scale, true) +
		m.p.XBHHitWeight*curve.Effectiveness(hit, m.p.XBHHit.Midpoint, m.p.XBHHit.Scale, true)
	share := curve.RateFromEffectiveness(m.p.DoubleShareMid, m.p.DoubleShare.Min, m.p.DoubleShare.Max, eff)
	return m.p.DoubleShare.clamp(share)
}

// HBPRate sanitizes a supplied HBP rate. Negative or NaN falls back to the
// configured default.
func (m *Model) HBPRate(rate float64) float64 {
	if rate < 0 || math.IsNaN(rate) {
		rate = m.p.HBPDefault
	}
	return curve.Clamp(rate, 0, MaxHBPRate)
}

// Probabilities returns the normalized outcome distribution for one PA.
func (m *Model) Probabilities(pow, hit, eye, hbpRate float64) model.Probabilities {
	var out model.Probabilities

	k := m.KRate(eye, hit)
	bb := m.BBRate(eye)
	hbp := m.HBPRate(hbpRate)
	hr := m.HRRate(pow, hit, eye)

	if sum := k + bb + hbp + hr; sum >= 1 {
		scale := 1 / sum
		k, bb, hbp = k*scale, bb*scale, hbp*scale
		hr = max(0, 1-(k+bb+hbp))
	} else {
		bip := 1 - sum
		babip := m.BABIP(hit)
		hits := bip * babip
		out[model.IPO] = max(0, bip*(1-babip))
		if hits > 0 {
			share := m.DoubleShare(pow, hit)
			out[model.Double] = max(0, hits*share)
			out[model.Single] = max(0, hits*(1-share))
		}
	}
	out[model.HR] = hr
	out[model.BB] = bb
	out[model.HBP] = hbp
	out[model.K] = k

	return normalize(out)
}

func normalize(p model.Probabilities) model.Probabilities {
	var total float64
	for i, v := range p {
		if v < 0 || math.IsNaN(v) {
			p[i] = 0
			continue
		}
		total += v
	}
	if total == 0 || math.IsInf(total, 0) {
		return model.CertainOut()
	}
	for i := range p {
		p[i] /= total
	}
	return p
}
