package report

import "errors"

var (
	// ErrUnknownAttribute is returned for a sweep attribute other than POW, HIT or EYE.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrInvalidSweep is returned for an empty or malformed sweep range.
	ErrInvalidSweep = errors.New("invalid sweep")
)
