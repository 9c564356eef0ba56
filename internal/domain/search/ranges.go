package search

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/okian/batsim/internal/domain/curve"
	"github.com/okian/batsim/internal/domain/model"
)

// Range is an inclusive search interval.
type Range = model.Range

// Ranges holds one Range per attribute.
type Ranges = model.Ranges

// RangesAround returns anchor±delta per attribute, clamped to the attribute
// domain. A negative delta is treated as zero.
func RangesAround(anchor model.Attributes, delta float64) Ranges {
	delta = max(0, delta)
	return Ranges{
		POW: around(anchor.POW, delta),
		HIT: around(anchor.HIT, delta),
		EYE: around(anchor.EYE, delta),
	}
}

func around(v, delta float64) Range {
	lo := curve.Clamp(v-delta, model.MinAttribute, model.MaxAttribute)
	hi := curve.Clamp(v+delta, model.MinAttribute, model.MaxAttribute)
	if lo > hi {
		c := curve.Clamp(v, model.MinAttribute, model.MaxAttribute)
		return Range{Low: c, High: c}
	}
	return Range{Low: lo, High: hi}
}

// ErrInvalidRange is returned for a range that is inverted or not a number.
var ErrInvalidRange = errors.New("invalid search range")

// ClampRanges clamps every bound into the attribute domain. Inverted or NaN
// ranges are rejected.
func ClampRanges(r Ranges) (Ranges, error) {
	for _, c := range []struct {
		name string
		r    Range
	}{{"pow", r.POW}, {"hit", r.HIT}, {"eye", r.EYE}} {
		if math.IsNaN(c.r.Low) || math.IsNaN(c.r.High) || c.r.Low > c.r.High {
			return Ranges{}, fmt.Errorf("%w: %s [%g, %g]", ErrInvalidRange, c.name, c.r.Low, c.r.High)
		}
	}
	clamp := func(x Range) Range {
		return Range{
			Low:  curve.Clamp(x.Low, model.MinAttribute, model.MaxAttribute),
			High: curve.Clamp(x.High, model.MinAttribute, model.MaxAttribute),
		}
	}
	return Ranges{POW: clamp(r.POW), HIT: clamp(r.HIT), EYE: clamp(r.EYE)}, nil
}

// RandomEven returns a uniformly chosen even integer in r. When r holds no
// even integer it returns the nearest integer inside r, and when r holds no
// integer at all it returns round(Low) clamped into r.
func RandomEven(rng *rand.Rand, r Range) float64 {
	lo := math.Ceil(r.Low)
	hi := math.Floor(r.High)
	if lo > hi {
		return curve.Clamp(math.Round(r.Low), r.Low, r.High)
	}
	start, end := int(lo), int(hi)
	if start%2 != 0 {
		start++
	}
	if end%2 != 0 {
		end--
	}
	if start > end {
		return lo
	}
	return float64(start + 2*rng.IntN((end-start)/2+1))
}
