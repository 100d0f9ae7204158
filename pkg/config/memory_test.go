package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/baiduauth/pkg/config"
)

func TestMemoryStore_FindActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()
		s := config.NewMemoryStore()
		_, err := s.FindActive(ctx)
		require.ErrorIs(t, err, config.ErrNotFound)
	})

	t.Run("most recent active wins", func(t *testing.T) {
		t.Parallel()
		s := config.NewMemoryStore()

		older := config.New("older", "secret")
		older.CreatedAt = time.Now().Add(-time.Hour)
		require.NoError(t, s.Save(ctx, older))

		newer := config.New("newer", "secret")
		require.NoError(t, s.Save(ctx, newer))

		inactive := config.New("inactive", "secret")
		inactive.Active = false
		inactive.CreatedAt = time.Now().Add(time.Hour)
		require.NoError(t, s.Save(ctx, inactive))

		got, err := s.FindActive(ctx)
		require.NoError(t, err)
		require.Equal(t, "newer", got.ClientID)
	})

	t.Run("only inactive configs", func(t *testing.T) {
		t.Parallel()
		s := config.NewMemoryStore()

		cfg := config.New("abc", "secret")
		cfg.Active = false
		require.NoError(t, s.Save(ctx, cfg))

		_, err := s.FindActive(ctx)
		require.ErrorIs(t, err, config.ErrNotFound)
	})
}

func TestMemoryStore_FindByClientID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := config.NewMemoryStore()
	cfg := config.New("abc", "secret")
	require.NoError(t, s.Save(ctx, cfg))

	got, err := s.FindByClientID(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, cfg.ID, got.ID)

	_, err = s.FindByClientID(ctx, "missing")
	require.ErrorIs(t, err, config.ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := config.NewMemoryStore()
	cfg := config.New("abc", "secret")
	require.NoError(t, s.Save(ctx, cfg))
	require.NoError(t, s.Delete(ctx, cfg.ID))

	_, err := s.FindActive(ctx)
	require.ErrorIs(t, err, config.ErrNotFound)
}

func TestEffectiveScope(t *testing.T) {
	t.Parallel()

	cfg := config.New("abc", "secret")
	require.Equal(t, "basic", cfg.EffectiveScope())

	cfg.Scope = "netdisk"
	require.Equal(t, "netdisk", cfg.EffectiveScope())
}
