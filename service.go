package baiduauth

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/oauthkit/baiduauth/pkg/config"
	"github.com/oauthkit/baiduauth/pkg/state"
	"github.com/oauthkit/baiduauth/pkg/token"
	"github.com/oauthkit/baiduauth/pkg/user"
)

// Service orchestrates the Baidu login flow end to end. It owns no
// state of its own; every step delegates to the package that implements
// it.
type Service struct {
	configs config.Store
	states  *state.Manager
	tokens  *token.Exchanger
	users   *user.Manager
	log     *slog.Logger
}

// New assembles the façade. All four collaborators are required.
func New(configs config.Store, states *state.Manager, tokens *token.Exchanger, users *user.Manager, opts ...Option) (*Service, error) {
	if configs == nil {
		return nil, errors.New("baiduauth: config store is required")
	}
	if states == nil {
		return nil, errors.New("baiduauth: state manager is required")
	}
	if tokens == nil {
		return nil, errors.New("baiduauth: token exchanger is required")
	}
	if users == nil {
		return nil, errors.New("baiduauth: user manager is required")
	}

	s := &Service{
		configs: configs,
		states:  states,
		tokens:  tokens,
		users:   users,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StartLogin creates a state token against the active provider config
// and returns the Baidu authorization URL to redirect the browser to.
// sessionID ties the token to the browser session and may be empty.
func (s *Service) StartLogin(ctx context.Context, sessionID string) (string, error) {
	cfg, err := s.configs.FindActive(ctx)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return "", ErrNoValidConfig
		}
		return "", err
	}
	return s.states.Create(ctx, cfg, sessionID)
}

// CompleteLogin finishes the callback leg: consume the state token,
// exchange the code, fetch the profile, and reconcile the user record.
//
// The state token is consumed before anything that can fail downstream;
// a failed exchange does not make the token reusable. Each user retry
// starts from StartLogin with a fresh token.
func (s *Service) CompleteLogin(ctx context.Context, code, stateValue string) (*user.Record, error) {
	st, err := s.states.ValidateAndConsume(ctx, stateValue)
	if err != nil {
		return nil, err
	}
	cfg := st.Config
	if cfg == nil {
		return nil, ErrNoValidConfig
	}

	redirectURI, err := s.states.RedirectURI()
	if err != nil {
		return nil, err
	}

	tok, err := s.tokens.Exchange(ctx, code, cfg.ClientID, cfg.ClientSecret, redirectURI)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	profile, err := s.users.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	rec, err := s.users.Upsert(ctx, user.MergeTokenAndProfile(tok.Raw, profile), cfg)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "baidu login completed", slog.String("client_id", cfg.ClientID))
	return rec, nil
}

// GetProfile returns the raw Baidu profile for a known uid, served from
// the stored copy while the access token is valid unless forceRefresh
// is set.
func (s *Service) GetProfile(ctx context.Context, uid string, forceRefresh bool) (map[string]any, error) {
	return s.users.GetProfile(ctx, uid, forceRefresh)
}

// RefreshToken renews the access token for a known uid and persists the
// result. Users without a refresh token are skipped without error.
func (s *Service) RefreshToken(ctx context.Context, uid string) (*token.Record, error) {
	rec, err := s.users.Find(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.tokens.Refresh(ctx, rec)
}

// CleanupStates removes every expired state token and reports how many
// were deleted.
func (s *Service) CleanupStates(ctx context.Context) (int64, error) {
	return s.states.Cleanup(ctx)
}
