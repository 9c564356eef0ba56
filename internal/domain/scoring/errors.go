package scoring

import "errors"

var (
	// ErrUnknownKey is returned for a weight key outside Keys.
	ErrUnknownKey = errors.New("unknown error weight key")
	// ErrNegativeWeight is returned for a weight below zero.
	ErrNegativeWeight = errors.New("error weight must not be negative")
)
