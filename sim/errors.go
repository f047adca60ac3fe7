package sim

import "errors"

var (
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid warehouse config")
	// ErrInvalidAction is returned for action values outside the 4-way encoding.
	ErrInvalidAction = errors.New("invalid action")
	// ErrActionCount is returned when a step receives a different number of
	// actions than there are robots.
	ErrActionCount = errors.New("action count does not match robot count")
	// ErrUnknownRobot is returned for lookups of a robot id not in the roster.
	ErrUnknownRobot = errors.New("unknown robot")
)
