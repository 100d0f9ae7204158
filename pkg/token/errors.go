package token

import "errors"

var (
	// ErrInvalidResponse indicates a token endpoint body that decodes
	// neither as a JSON object nor as a URL-encoded form.
	ErrInvalidResponse = errors.New("token response could not be decoded")

	// ErrMissingAccessToken indicates a decodable token response without
	// an access_token field.
	ErrMissingAccessToken = errors.New("token response missing access token")
)
