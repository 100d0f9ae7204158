package baiduauth

import (
	"errors"

	"github.com/oauthkit/baiduauth/pkg/state"
	"github.com/oauthkit/baiduauth/pkg/token"
	"github.com/oauthkit/baiduauth/pkg/user"
)

var (
	// ErrNoValidConfig is returned when no active provider config exists
	// to start a login with.
	ErrNoValidConfig = errors.New("baiduauth: no valid oauth2 config")

	// ErrInvalidState re-exports the state package sentinel so callers
	// of the façade branch on one import.
	ErrInvalidState = state.ErrInvalidState

	// ErrMissingAccessToken re-exports the token package sentinel for a
	// decodable token response without an access token.
	ErrMissingAccessToken = token.ErrMissingAccessToken

	// ErrUserNotFound is returned by profile and refresh lookups for an
	// unknown Baidu uid.
	ErrUserNotFound = user.ErrNotFound
)
