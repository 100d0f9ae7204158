// Package state manages the anti-CSRF state tokens that bind an OAuth2
// authorization callback to the request that initiated it, and builds
// the provider authorization URL.
package state

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/oauthkit/baiduauth/pkg/config"
)

// Token is a single-use, time-bounded state value.
//
// Lifecycle: created unused, then either consumed exactly once via
// ValidateAndConsume or expired by time passage. There is no way back
// from consumed or expired.
type Token struct {
	ID        uuid.UUID
	Value     string
	Config    *config.Config
	ExpiresAt time.Time
	Used      bool
	SessionID string
	CreatedAt time.Time
}

// IsExpired reports whether the token has expired at the given time.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsValid reports whether the token can still be consumed at the given
// time: never used and not yet expired.
func (t *Token) IsValid(now time.Time) bool {
	return !t.Used && !t.IsExpired(now)
}

// newValue generates a state value from 16 bytes of crypto/rand entropy,
// hex-encoded.
func newValue() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
