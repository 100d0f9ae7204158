package state

import "errors"

var (
	// ErrInvalidState is returned when a state value is unknown, expired,
	// or already used. The three cases are deliberately indistinguishable
	// to the caller; distinguishing them would aid enumeration.
	ErrInvalidState = errors.New("state: invalid or expired state")

	// ErrNotFound is the store-level miss underlying ErrInvalidState.
	ErrNotFound = errors.New("state: token not found")

	// ErrConfiguration is returned when the callback redirect URI cannot
	// be resolved. This is a setup problem, not a user-facing condition.
	ErrConfiguration = errors.New("state: redirect URI not configured")
)
