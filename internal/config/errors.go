package config

import (
	"errors"
)

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig is wrapped when a provider or the decoder fails.
	ErrLoadConfig = errors.New("load config failed")
)
