package players

import "errors"

// Sentinel kinds for reference data errors.
var (
	ErrNotFound     = errors.New("player not found")
	ErrInvalidTable = errors.New("invalid reference table")
)
