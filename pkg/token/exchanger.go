package token

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"

	"github.com/oauthkit/baiduauth/pkg/apiclient"
	"github.com/oauthkit/baiduauth/pkg/state"
	"github.com/oauthkit/baiduauth/pkg/user"
)

// Exchanger talks to Baidu's token endpoint: code-for-token exchange
// during login and refresh-token renewal afterwards.
type Exchanger struct {
	api      *apiclient.Client
	users    user.Store
	tokenURL string
	log      *slog.Logger
}

// Option configures the exchanger.
type Option func(*Exchanger)

// WithTokenURL overrides the token endpoint, for tests.
func WithTokenURL(u string) Option {
	return func(e *Exchanger) {
		if u != "" {
			e.tokenURL = u
		}
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(log *slog.Logger) Option {
	return func(e *Exchanger) {
		if log != nil {
			e.log = log
		}
	}
}

// NewExchanger creates a token exchanger. The API client and user store
// are required.
func NewExchanger(api *apiclient.Client, users user.Store, opts ...Option) (*Exchanger, error) {
	if api == nil {
		return nil, errors.New("token: api client is required")
	}
	if users == nil {
		return nil, errors.New("token: user store is required")
	}

	e := &Exchanger{
		api:      api,
		users:    users,
		tokenURL: state.Endpoint.TokenURL,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Exchange trades an authorization code for a token record. Baidu's
// token endpoint answers GET requests, unlike most OAuth2 providers.
func (e *Exchanger) Exchange(ctx context.Context, code, clientID, clientSecret, redirectURI string) (*Record, error) {
	resp, err := e.api.Execute(ctx, "token exchange", e.tokenURL, apiclient.RequestOptions{
		Query: url.Values{
			"grant_type":    {"authorization_code"},
			"code":          {code},
			"client_id":     {clientID},
			"client_secret": {clientSecret},
			"redirect_uri":  {redirectURI},
		},
		Headers: apiclient.DefaultHeaders("application/json"),
	})
	if err != nil {
		return nil, err
	}
	return Parse(resp.Body)
}

// Refresh renews a user's access token with their refresh token and
// persists the renewed fields on the record. A user without a refresh
// token, or without a client config to authenticate with, is skipped and
// an empty record is returned.
func (e *Exchanger) Refresh(ctx context.Context, rec *user.Record) (*Record, error) {
	if rec.RefreshToken == "" || rec.Config == nil {
		e.log.DebugContext(ctx, "token refresh skipped",
			slog.String("baidu_uid", rec.BaiduUID),
			slog.Bool("has_refresh_token", rec.RefreshToken != ""))
		return &Record{Raw: map[string]any{}}, nil
	}

	resp, err := e.api.Execute(ctx, "token refresh", e.tokenURL, apiclient.RequestOptions{
		Query: url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {rec.RefreshToken},
			"client_id":     {rec.Config.ClientID},
			"client_secret": {rec.Config.ClientSecret},
		},
		Headers: apiclient.DefaultHeaders("application/json"),
	})
	if err != nil {
		return nil, err
	}

	tok, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	if tok.AccessToken != "" {
		rec.AccessToken = tok.AccessToken
	}
	if tok.ExpiresIn > 0 {
		rec.SetExpiresIn(tok.ExpiresIn)
	}
	if tok.RefreshToken != "" {
		rec.RefreshToken = tok.RefreshToken
	}
	if err := e.users.Save(ctx, rec); err != nil {
		return nil, err
	}

	e.log.InfoContext(ctx, "access token refreshed", slog.String("baidu_uid", rec.BaiduUID))
	return tok, nil
}
