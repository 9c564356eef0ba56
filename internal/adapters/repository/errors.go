package repository

import "errors"

// Sentinel kinds for candidate pool errors.
var (
	ErrInvalidCapacity = errors.New("candidate pool capacity must be positive")
)
