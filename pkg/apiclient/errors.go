package apiclient

import "errors"

var (
	// ErrProviderUnavailable is returned for every failed provider call,
	// whether the failure was at the transport or HTTP level.
	ErrProviderUnavailable = errors.New("apiclient: provider call failed")

	// ErrTransport tags provider failures at the transport level
	// (DNS, connect, timeout). Always joined with ErrProviderUnavailable.
	ErrTransport = errors.New("apiclient: transport error")

	// ErrHTTPStatus tags provider responses with a non-2xx status.
	// Always joined with ErrProviderUnavailable.
	ErrHTTPStatus = errors.New("apiclient: unexpected http status")
)
