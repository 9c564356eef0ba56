package service

import "errors"

var (
	// ErrNoCandidates is returned when stage 1 retained nothing to refine.
	ErrNoCandidates = errors.New("no candidates")

	// ErrTooManyTrials is returned when stage 1 would not fit the trial queue.
	ErrTooManyTrials = errors.New("too many trials")

	// ErrNoReferenceData is returned when the reference table is not loaded.
	ErrNoReferenceData = errors.New("reference data not loaded")

	// ErrInvalidInput is returned for out-of-domain requests.
	ErrInvalidInput = errors.New("invalid input")
)
