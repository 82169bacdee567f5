package domain

import "errors"

var (
	// ErrInsufficientSize means a computed quantity cannot satisfy the
	// exchange minimums within the exposure cap and available balance.
	// Not retryable.
	ErrInsufficientSize = errors.New("position size below exchange minimum")

	// ErrAlreadyInPosition is returned when an entry is attempted while a
	// position is already open for the symbol.
	ErrAlreadyInPosition = errors.New("position already open")

	// ErrNoPosition is returned when an exit or adjustment is attempted
	// while flat.
	ErrNoPosition = errors.New("no open position")

	// ErrStateCorrupted marks a persisted state file that could not be
	// parsed. The caller backs the file up and starts fresh.
	ErrStateCorrupted = errors.New("persisted state corrupted")
)
