package gesturepose

import "errors"

var (
	// ErrCannotPlace is returned when no sensing source produced a position for a screen point.
	ErrCannotPlace = errors.New("cannot place object here")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownPhase is returned for a touch phase outside the known lifecycle.
	ErrUnknownPhase = errors.New("unknown touch phase")
)
