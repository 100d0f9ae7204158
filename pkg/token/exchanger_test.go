package token_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/baiduauth/pkg/apiclient"
	"github.com/oauthkit/baiduauth/pkg/config"
	"github.com/oauthkit/baiduauth/pkg/token"
	"github.com/oauthkit/baiduauth/pkg/user"
)

func newTestExchanger(t *testing.T, handler http.HandlerFunc) (*token.Exchanger, *user.MemoryStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := user.NewMemoryStore()
	ex, err := token.NewExchanger(apiclient.New(), store, token.WithTokenURL(srv.URL))
	require.NoError(t, err)
	return ex, store
}

func TestExchanger_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("sends authorization code grant", func(t *testing.T) {
		t.Parallel()

		ex, _ := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "authorization_code", q.Get("grant_type"))
			require.Equal(t, "code-1", q.Get("code"))
			require.Equal(t, "cid", q.Get("client_id"))
			require.Equal(t, "secret", q.Get("client_secret"))
			require.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
			w.Write([]byte(`{"access_token":"T","expires_in":3600,"refresh_token":"R"}`))
		})

		rec, err := ex.Exchange(context.Background(), "code-1", "cid", "secret", "https://app.example.com/callback")
		require.NoError(t, err)
		require.Equal(t, "T", rec.AccessToken)
		require.Equal(t, 3600, rec.ExpiresIn)
		require.Equal(t, "R", rec.RefreshToken)
	})

	t.Run("undecodable body fails", func(t *testing.T) {
		t.Parallel()

		ex, _ := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("%%%"))
		})

		_, err := ex.Exchange(context.Background(), "code-1", "cid", "secret", "")
		require.ErrorIs(t, err, token.ErrInvalidResponse)
	})

	t.Run("provider error surfaces", func(t *testing.T) {
		t.Parallel()

		ex, _ := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := ex.Exchange(context.Background(), "code-1", "cid", "secret", "")
		require.ErrorIs(t, err, apiclient.ErrProviderUnavailable)
	})
}

func TestExchanger_Refresh(t *testing.T) {
	t.Parallel()

	cfg := config.New("cid", "secret")

	t.Run("renews and persists token fields", func(t *testing.T) {
		t.Parallel()

		ex, store := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			require.Equal(t, "refresh_token", q.Get("grant_type"))
			require.Equal(t, "R-old", q.Get("refresh_token"))
			require.Equal(t, "cid", q.Get("client_id"))
			require.Equal(t, "secret", q.Get("client_secret"))
			require.Empty(t, q.Get("redirect_uri"))
			w.Write([]byte(`{"access_token":"T-new","expires_in":3600,"refresh_token":"R-new"}`))
		})

		rec := &user.Record{
			BaiduUID:     "u1",
			AccessToken:  "T-old",
			RefreshToken: "R-old",
			Config:       cfg,
		}
		require.NoError(t, store.Save(context.Background(), rec))

		tok, err := ex.Refresh(context.Background(), rec)
		require.NoError(t, err)
		require.Equal(t, "T-new", tok.AccessToken)

		saved, err := store.FindByBaiduUID(context.Background(), "u1")
		require.NoError(t, err)
		require.Equal(t, "T-new", saved.AccessToken)
		require.Equal(t, "R-new", saved.RefreshToken)
		require.Equal(t, 3600, saved.ExpiresIn)
		require.WithinDuration(t, time.Now().Add(time.Hour), saved.ExpireTime, 5*time.Second)
	})

	t.Run("no refresh token is a no-op", func(t *testing.T) {
		t.Parallel()

		ex, _ := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("token endpoint should not be called")
		})

		rec := &user.Record{BaiduUID: "u1", Config: cfg}
		tok, err := ex.Refresh(context.Background(), rec)
		require.NoError(t, err)
		require.Empty(t, tok.AccessToken)
		require.NotNil(t, tok.Raw)
		require.Empty(t, tok.Raw)
	})

	t.Run("missing renewal fields keep current values", func(t *testing.T) {
		t.Parallel()

		ex, store := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"T-new"}`))
		})

		rec := &user.Record{
			BaiduUID:     "u1",
			AccessToken:  "T-old",
			RefreshToken: "R-old",
			Config:       cfg,
		}
		rec.SetExpiresIn(1800)
		require.NoError(t, store.Save(context.Background(), rec))

		_, err := ex.Refresh(context.Background(), rec)
		require.NoError(t, err)

		saved, err := store.FindByBaiduUID(context.Background(), "u1")
		require.NoError(t, err)
		require.Equal(t, "T-new", saved.AccessToken)
		require.Equal(t, "R-old", saved.RefreshToken)
		require.Equal(t, 1800, saved.ExpiresIn)
	})
}
