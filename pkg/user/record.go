// Package user reconciles Baidu profile and token payloads into local
// user records: it fetches the provider user-info endpoint, merges the
// data with token responses, and upserts records keyed by the Baidu uid.
package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/oauthkit/baiduauth/pkg/config"
)

// Record is a local user tied to a Baidu account. BaiduUID is globally
// unique; reconciliation upserts on it.
type Record struct {
	ID           uuid.UUID
	BaiduUID     string
	AccessToken  string
	ExpiresIn    int
	ExpireTime   time.Time
	RefreshToken string
	Username     string
	Avatar       string
	RawProfile   map[string]any
	Config       *config.Config
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetExpiresIn stores the token lifetime and recomputes ExpireTime from
// the current clock. ExpiresIn and ExpireTime are never set
// independently; this is the only write path for either.
func (r *Record) SetExpiresIn(seconds int) {
	r.ExpiresIn = seconds
	r.ExpireTime = time.Now().Add(time.Duration(seconds) * time.Second)
}

// IsTokenExpired reports whether the access token has expired. The
// boundary is inclusive: a token whose ExpireTime equals the current
// instant counts as expired.
func (r *Record) IsTokenExpired() bool {
	return !time.Now().Before(r.ExpireTime)
}
