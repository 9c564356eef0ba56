package curve

import "errors"

var (
	// ErrEmpty is returned when a curve is built without points.
	ErrEmpty = errors.New("curve has no points")
	// ErrNotIncreasing is returned when point X values are not strictly increasing.
	ErrNotIncreasing = errors.New("curve points must have strictly increasing x")
)
