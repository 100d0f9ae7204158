// Package token exchanges authorization codes for Baidu access tokens
// and refreshes them. Baidu's token endpoint answers GET requests and
// may reply either as a JSON object or as a URL-encoded form; Parse
// accepts both.
package token

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
)

// Record is a parsed token response. Raw keeps the full decoded payload
// so callers can merge it with profile data without re-parsing.
type Record struct {
	AccessToken  string
	ExpiresIn    int
	RefreshToken string
	Raw          map[string]any
}

// Parse decodes a token endpoint response body. A JSON object is tried
// first; failing that the body is read as a URL-encoded form. When
// neither decodes, Parse fails with ErrInvalidResponse.
func Parse(body string) (*Record, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(body), &data); err != nil || data == nil {
		values, ferr := url.ParseQuery(body)
		if ferr != nil || len(values) == 0 {
			return nil, errors.Join(ErrInvalidResponse, err, ferr)
		}
		data = make(map[string]any, len(values))
		for k := range values {
			data[k] = values.Get(k)
		}
	}

	rec := &Record{Raw: data}
	if s, ok := data["access_token"].(string); ok {
		rec.AccessToken = s
	}
	if s, ok := data["refresh_token"].(string); ok {
		rec.RefreshToken = s
	}
	rec.ExpiresIn = intValue(data["expires_in"])
	return rec, nil
}

// intValue converts a decoded expires_in to seconds. JSON numbers are
// accepted only when integral; form-encoded responses deliver numeric
// strings. Anything else collapses to zero.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}
