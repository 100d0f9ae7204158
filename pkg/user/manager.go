package user

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/oauthkit/baiduauth/pkg/apiclient"
	"github.com/oauthkit/baiduauth/pkg/config"
)

const (
	// UserInfoURL is Baidu's passport user-info endpoint.
	UserInfoURL = "https://openapi.baidu.com/rest/2.0/passport/users/getInfo"

	avatarBaseURL = "https://himg.bdimg.com/sys/portrait/item/"
)

// Manager fetches provider profiles and reconciles them into local
// user records.
type Manager struct {
	api     *apiclient.Client
	store   Store
	infoURL string
	log     *slog.Logger
}

// Option configures the manager.
type Option func(*Manager)

// WithUserInfoURL overrides the user-info endpoint, for tests.
func WithUserInfoURL(u string) Option {
	return func(m *Manager) {
		if u != "" {
			m.infoURL = u
		}
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a user manager. The API client and store are
// required.
func NewManager(api *apiclient.Client, store Store, opts ...Option) (*Manager, error) {
	if api == nil {
		return nil, errors.New("user: api client is required")
	}
	if store == nil {
		return nil, errors.New("user: store is required")
	}

	m := &Manager{
		api:     api,
		store:   store,
		infoURL: UserInfoURL,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// FetchProfile retrieves the provider profile for the access token. The
// response body must be a JSON object; anything else fails with
// ErrInvalidResponse.
func (m *Manager) FetchProfile(ctx context.Context, accessToken string) (map[string]any, error) {
	resp, err := m.api.Execute(ctx, "user info request", m.infoURL, apiclient.RequestOptions{
		Query:   url.Values{"access_token": {accessToken}},
		Headers: apiclient.DefaultHeaders("application/json"),
	})
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &data); err != nil || data == nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}
	return data, nil
}

// MergeTokenAndProfile shallow-merges the two payloads into a fresh map.
// Profile keys win on collision; neither input is modified.
func MergeTokenAndProfile(tokenData, profileData map[string]any) map[string]any {
	merged := make(map[string]any, len(tokenData)+len(profileData))
	maps.Copy(merged, tokenData)
	maps.Copy(merged, profileData)
	return merged
}

// Upsert reconciles a merged token+profile payload into the local record
// for its Baidu uid: creating the record when absent, otherwise applying
// a partial update where malformed fields never clobber good data. The
// full payload is stored as RawProfile.
func (m *Manager) Upsert(ctx context.Context, data map[string]any, cfg *config.Config) (*Record, error) {
	p := parsePayload(data)
	if p.uid == "" {
		return nil, ErrMissingUserID
	}

	rec, err := m.store.FindByBaiduUID(ctx, p.uid)
	switch {
	case errors.Is(err, ErrNotFound):
		rec = &Record{
			ID:        uuid.New(),
			BaiduUID:  p.uid,
			CreatedAt: time.Now(),
		}
		rec.AccessToken = p.accessToken // zero value when absent
		rec.SetExpiresIn(p.expiresIn)   // zero when absent or malformed
		rec.Config = cfg
	case err != nil:
		return nil, err
	default:
		if p.hasAccessToken {
			rec.AccessToken = p.accessToken
		}
		if p.hasExpiresIn {
			rec.SetExpiresIn(p.expiresIn)
		}
	}

	if p.hasRefreshToken {
		rec.RefreshToken = p.refreshToken
	}
	m.applyProfile(rec, p)
	rec.RawProfile = maps.Clone(data)

	if err := m.store.Save(ctx, rec); err != nil {
		return nil, err
	}

	m.log.InfoContext(ctx, "baidu user reconciled", slog.String("baidu_uid", maskUID(rec.BaiduUID)))
	return rec, nil
}

// Find returns the stored record for a Baidu uid.
func (m *Manager) Find(ctx context.Context, uid string) (*Record, error) {
	return m.store.FindByBaiduUID(ctx, uid)
}

// GetProfile returns the raw profile for a Baidu uid. The cached copy is
// served while the token is unexpired and a profile is on file; otherwise
// the profile is re-fetched, re-applied, and persisted.
func (m *Manager) GetProfile(ctx context.Context, uid string, forceRefresh bool) (map[string]any, error) {
	rec, err := m.store.FindByBaiduUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if !forceRefresh && !rec.IsTokenExpired() && rec.RawProfile != nil {
		return rec.RawProfile, nil
	}

	data, err := m.FetchProfile(ctx, rec.AccessToken)
	if err != nil {
		return nil, err
	}

	m.applyProfile(rec, parsePayload(data))
	rec.RawProfile = data
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Manager) applyProfile(rec *Record, p payload) {
	if p.hasUsername {
		rec.Username = p.username
	}
	// Baidu returns a bare portrait token; the avatar URL is assembled
	// from it. An empty portrait leaves the avatar untouched.
	if p.portrait != "" {
		rec.Avatar = avatarBaseURL + p.portrait
	}
}

// payload is the typed view of a merged token+profile map. Conversion
// happens once here; the reconciliation logic never re-checks types.
type payload struct {
	uid             string
	accessToken     string
	hasAccessToken  bool
	expiresIn       int
	hasExpiresIn    bool
	refreshToken    string
	hasRefreshToken bool
	username        string
	hasUsername     bool
	portrait        string
}

func parsePayload(data map[string]any) payload {
	var p payload

	// The provider reports its user id under different keys depending on
	// the endpoint; the first present key wins.
	for _, key := range []string{"userid", "uid", "baidu_uid"} {
		if v, ok := data[key]; ok && v != nil {
			if s, ok := v.(string); ok {
				p.uid = s
			}
			break
		}
	}

	p.accessToken, p.hasAccessToken = stringField(data, "access_token")
	p.expiresIn, p.hasExpiresIn = intField(data, "expires_in")
	p.refreshToken, p.hasRefreshToken = stringField(data, "refresh_token")
	p.username, p.hasUsername = stringField(data, "username")
	p.portrait, _ = stringField(data, "portrait")

	return p
}

func stringField(data map[string]any, key string) (string, bool) {
	if v, ok := data[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// intField accepts JSON numbers (only when integral) and numeric
// strings, covering both JSON and form-encoded provider responses.
func intField(data map[string]any, key string) (int, bool) {
	v, ok := data[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

// maskUID truncates a Baidu uid for logging.
func maskUID(uid string) string {
	if len(uid) <= 8 {
		return uid
	}
	return uid[:8] + "***"
}
