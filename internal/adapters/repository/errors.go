package repository

import "errors"

// Sentinel errors for leaderboard store operations.
var (
	// ErrNotFound indicates the requested customer has no score on record.
	ErrNotFound = errors.New("customer not found")
	// ErrInvalidArgument indicates a malformed rank range or other input.
	ErrInvalidArgument = errors.New("invalid argument")
)
