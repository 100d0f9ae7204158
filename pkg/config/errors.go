package config

import "errors"

var (
	// ErrNotFound is returned when no matching config exists.
	ErrNotFound = errors.New("config: not found")
)
