// Package curve implements the piecewise-linear S-curves and the tanh
// effectiveness scaling the probability model is built from.
package curve

import "fmt"

// SoftCap is the nominal top of the attribute scale.
const SoftCap = 150.0

// maxInput is the hard cap applied to a value before lookup.
const maxInput = SoftCap * 1.1

// Point is one anchor of an S-curve.
type Point struct {
	X float64 `json:"x" koanf:"x" yaml:"x"`
	Y float64 `json:"y" koanf:"y" yaml:"y"`
}

// SCurve is an ordered, immutable list of anchor points.
type SCurve struct {
	points []Point
}

// New copies and validates points into an SCurve.
func New(points ...Point) (SCurve, error) {
	if len(points) == 0 {
		return SCurve{}, ErrEmpty
	}
	for i := 1; i < len(points); i++ {
		if points[i].X <= points[i-1].X {
			return SCurve{}, fmt.Errorf("point %d (x=%g) after x=%g: %w", i, points[i].X, points[i-1].X, ErrNotIncreasing)
		}
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	return SCurve{points: cp}, nil
}

// MustNew is New for package-level defaults. It panics on invalid input.
func MustNew(points ...Point) SCurve {
	c, err := New(points...)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of anchor points.
func (c SCurve) Len() int { return len(c.points) }

// Points returns a copy of the anchor points.
func (c SCurve) Points() []Point {
	cp := make([]Point, len(c.points))
	copy(cp, c.points)
	return cp
}

// Interpolate evaluates c at value.
//
// The value is capped at 1.1x SoftCap. Below the first anchor the first Y
// is returned and above the last anchor the last Y, so the curve is flat
// outside its domain. An empty curve evaluates to 0.
func Interpolate(value float64, c SCurve) float64 {
	pts := c.points
	if len(pts) == 0 {
		return 0
	}
	v := min(value, maxInput)
	if v <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if v >= last.X {
		return last.Y
	}
	for i := 0; i < len(pts)-1; i++ {
		p1, p2 := pts[i], pts[i+1]
		if p1.X <= v && v < p2.X {
			if p2.X == p1.X {
				return p1.Y
			}
			return p1.Y + (p2.Y-p1.Y)*(v-p1.X)/(p2.X-p1.X)
		}
	}
	return last.Y
}
