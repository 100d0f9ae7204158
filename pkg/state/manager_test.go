package state_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/baiduauth/pkg/config"
	"github.com/oauthkit/baiduauth/pkg/state"
)

func testConfig() *config.Config {
	return config.New("abc", "secret")
}

func newManager(t *testing.T, store state.Store, opts ...state.Option) *state.Manager {
	t.Helper()
	m, err := state.NewManager(store, state.StaticResolver("https://example.com/baidu-oauth2/callback"), opts...)
	require.NoError(t, err)
	return m
}

func TestNewManager_Validation(t *testing.T) {
	t.Parallel()

	_, err := state.NewManager(nil, state.StaticResolver("https://example.com/cb"))
	require.Error(t, err)

	_, err = state.NewManager(state.NewMemoryStore(), nil)
	require.Error(t, err)
}

func TestCreate_AuthorizationURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := state.NewMemoryStore()
	m := newManager(t, store)

	authURL, err := m.Create(ctx, testConfig(), "sess-1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(authURL, "https://openapi.baidu.com/oauth/2.0/authorize?"))

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "abc", q.Get("client_id"))
	require.Equal(t, "https://example.com/baidu-oauth2/callback", q.Get("redirect_uri"))
	require.Equal(t, "basic", q.Get("scope"))
	require.NotEmpty(t, q.Get("state"))

	// The state value must match a freshly persisted, unused token with a
	// ten-minute lifetime.
	tok, ok := store.Get(q.Get("state"))
	require.True(t, ok)
	require.False(t, tok.Used)
	require.Equal(t, "sess-1", tok.SessionID)
	require.WithinDuration(t, time.Now().Add(10*time.Minute), tok.ExpiresAt, 5*time.Second)
}

func TestCreate_CustomScope(t *testing.T) {
	t.Parallel()

	store := state.NewMemoryStore()
	m := newManager(t, store)

	cfg := testConfig()
	cfg.Scope = "netdisk"

	authURL, err := m.Create(context.Background(), cfg, "")
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	require.Equal(t, "netdisk", u.Query().Get("scope"))
}

func TestCreate_UniqueValues(t *testing.T) {
	t.Parallel()

	store := state.NewMemoryStore()
	m := newManager(t, store)

	seen := make(map[string]bool)
	for range 50 {
		authURL, err := m.Create(context.Background(), testConfig(), "")
		require.NoError(t, err)
		u, _ := url.Parse(authURL)
		v := u.Query().Get("state")
		require.Len(t, v, 32) // 16 bytes hex-encoded
		require.False(t, seen[v], "duplicate state value")
		seen[v] = true
	}
}

func TestCreate_UnresolvableRedirect(t *testing.T) {
	t.Parallel()

	m, err := state.NewManager(state.NewMemoryStore(), state.StaticResolver(""))
	require.NoError(t, err)

	_, err = m.Create(context.Background(), testConfig(), "")
	require.ErrorIs(t, err, state.ErrConfiguration)
}

func TestValidateAndConsume_SingleUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := state.NewMemoryStore()
	m := newManager(t, store)

	authURL, err := m.Create(ctx, testConfig(), "")
	require.NoError(t, err)
	u, _ := url.Parse(authURL)
	value := u.Query().Get("state")

	tok, err := m.ValidateAndConsume(ctx, value)
	require.NoError(t, err)
	require.True(t, tok.Used)
	require.Equal(t, "abc", tok.Config.ClientID)

	// Every subsequent attempt fails.
	_, err = m.ValidateAndConsume(ctx, value)
	require.ErrorIs(t, err, state.ErrInvalidState)
}

func TestValidateAndConsume_Unknown(t *testing.T) {
	t.Parallel()

	m := newManager(t, state.NewMemoryStore())
	_, err := m.ValidateAndConsume(context.Background(), "never-issued")
	require.ErrorIs(t, err, state.ErrInvalidState)
}

func TestValidateAndConsume_Expired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := state.NewMemoryStore()
	m := newManager(t, store, state.WithTTL(time.Millisecond))

	authURL, err := m.Create(ctx, testConfig(), "")
	require.NoError(t, err)
	u, _ := url.Parse(authURL)
	value := u.Query().Get("state")

	time.Sleep(10 * time.Millisecond)

	_, err = m.ValidateAndConsume(ctx, value)
	require.ErrorIs(t, err, state.ErrInvalidState)

	// Expired tokens are rejected, not consumed.
	tok, ok := store.Get(value)
	require.True(t, ok)
	require.False(t, tok.Used)
}

func TestValidateAndConsume_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := state.NewMemoryStore()
	m := newManager(t, store)

	authURL, err := m.Create(ctx, testConfig(), "")
	require.NoError(t, err)
	u, _ := url.Parse(authURL)
	value := u.Query().Get("state")

	const racers = 32
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ValidateAndConsume(ctx, value)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, state.ErrInvalidState)
		}
	}
	require.Equal(t, 1, wins, "exactly one consumer must win")
}

func TestCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := state.NewMemoryStore()
	m := newManager(t, store)
	now := time.Now()

	// One expired-unused, one expired-used, one live token.
	require.NoError(t, store.Save(ctx, &state.Token{Value: "expired-unused", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Save(ctx, &state.Token{Value: "expired-used", ExpiresAt: now.Add(-time.Minute), Used: true}))
	require.NoError(t, store.Save(ctx, &state.Token{Value: "live", ExpiresAt: now.Add(time.Minute)}))

	n, err := m.Cleanup(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	_, ok := store.Get("live")
	require.True(t, ok)
	_, ok = store.Get("expired-unused")
	require.False(t, ok)
	_, ok = store.Get("expired-used")
	require.False(t, ok)
}

func TestToken_Validity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok := &state.Token{ExpiresAt: now.Add(time.Minute)}

	require.True(t, tok.IsValid(now))
	require.False(t, tok.IsExpired(now))

	// Expiry boundary is inclusive.
	require.True(t, tok.IsExpired(tok.ExpiresAt))
	require.False(t, tok.IsValid(tok.ExpiresAt))

	tok.Used = true
	require.False(t, tok.IsValid(now))
}
