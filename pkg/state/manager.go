package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/oauthkit/baiduauth/pkg/config"
)

// Endpoint is Baidu's OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://openapi.baidu.com/oauth/2.0/authorize",
	TokenURL: "https://openapi.baidu.com/oauth/2.0/token",
}

// DefaultTTL is how long a freshly created state token stays valid.
const DefaultTTL = 10 * time.Minute

// RedirectResolver supplies the absolute callback URL registered with
// the provider. Resolution failures are configuration errors.
type RedirectResolver interface {
	RedirectURI() (string, error)
}

// StaticResolver is a RedirectResolver returning a fixed URL.
type StaticResolver string

func (r StaticResolver) RedirectURI() (string, error) {
	if r == "" {
		return "", ErrConfiguration
	}
	return string(r), nil
}

// Manager owns the state-token lifecycle and authorization-URL
// construction.
type Manager struct {
	store    Store
	resolver RedirectResolver
	endpoint oauth2.Endpoint
	ttl      time.Duration
	log      *slog.Logger
}

// Option configures the manager.
type Option func(*Manager)

// WithTTL overrides the token lifetime. Default: 10 minutes.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithEndpoint overrides the provider endpoint, for tests.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(m *Manager) {
		m.endpoint = ep
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

// NewManager creates a state manager. Both the store and the resolver
// are required.
func NewManager(store Store, resolver RedirectResolver, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("state: store is required")
	}
	if resolver == nil {
		return nil, errors.New("state: redirect resolver is required")
	}

	m := &Manager{
		store:    store,
		resolver: resolver,
		endpoint: Endpoint,
		ttl:      DefaultTTL,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create generates and persists a new state token bound to cfg, then
// returns the provider authorization URL carrying response_type=code,
// client_id, redirect_uri, state, and scope. An empty config scope
// falls back to "basic". sessionID may be empty.
func (m *Manager) Create(ctx context.Context, cfg *config.Config, sessionID string) (string, error) {
	redirectURI, err := m.RedirectURI()
	if err != nil {
		return "", err
	}

	value, err := newValue()
	if err != nil {
		return "", err
	}

	now := time.Now()
	t := &Token{
		ID:        uuid.New(),
		Value:     value,
		Config:    cfg,
		ExpiresAt: now.Add(m.ttl),
		SessionID: sessionID,
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, t); err != nil {
		return "", err
	}

	oc := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: redirectURI,
		Scopes:      []string{cfg.EffectiveScope()},
		Endpoint:    m.endpoint,
	}

	m.log.DebugContext(ctx, "state token created",
		slog.String("client_id", cfg.ClientID),
		slog.Time("expires_at", t.ExpiresAt),
	)

	return oc.AuthCodeURL(value), nil
}

// ValidateAndConsume atomically consumes the token with the given value.
// Unknown, expired, and already-used values all fail with ErrInvalidState;
// the store-level distinction is logged for telemetry but never surfaced.
func (m *Manager) ValidateAndConsume(ctx context.Context, value string) (*Token, error) {
	t, err := m.store.Consume(ctx, value, time.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.log.DebugContext(ctx, "state validation failed", slog.String("reason", "no matching valid token"))
			return nil, ErrInvalidState
		}
		return nil, err
	}
	return t, nil
}

// Cleanup deletes every expired token regardless of its used flag and
// returns the number removed. Scheduling is the caller's concern.
func (m *Manager) Cleanup(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.log.InfoContext(ctx, "expired state tokens removed", slog.Int64("count", n))
	}
	return n, nil
}

// RedirectURI resolves the callback URL for this deployment.
func (m *Manager) RedirectURI() (string, error) {
	uri, err := m.resolver.RedirectURI()
	if err != nil {
		return "", errors.Join(ErrConfiguration, err)
	}
	if uri == "" {
		return "", ErrConfiguration
	}
	return uri, nil
}
