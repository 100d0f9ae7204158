package user

import "errors"

var (
	// ErrNotFound is returned when no record exists for a Baidu uid.
	ErrNotFound = errors.New("user: not found")

	// ErrMissingUserID is returned when a provider payload carries no
	// usable user id under any of the known keys.
	ErrMissingUserID = errors.New("user: missing or invalid baidu user id")

	// ErrInvalidResponse is returned when the user-info endpoint does
	// not answer with a JSON object.
	ErrInvalidResponse = errors.New("user: invalid user info response")
)
