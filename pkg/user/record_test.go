package user_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/baiduauth/pkg/user"
)

func TestRecord_SetExpiresIn(t *testing.T) {
	t.Parallel()

	t.Run("recomputes expire time from now", func(t *testing.T) {
		t.Parallel()

		rec := &user.Record{}
		before := time.Now()
		rec.SetExpiresIn(3600)
		after := time.Now()

		require.Equal(t, 3600, rec.ExpiresIn)
		require.False(t, rec.ExpireTime.Before(before.Add(3600*time.Second)))
		require.False(t, rec.ExpireTime.After(after.Add(3600*time.Second)))
	})

	t.Run("zero lifetime expires immediately", func(t *testing.T) {
		t.Parallel()

		rec := &user.Record{}
		rec.SetExpiresIn(0)
		require.True(t, rec.IsTokenExpired())
	})
}

func TestRecord_IsTokenExpired(t *testing.T) {
	t.Parallel()

	t.Run("future expiry is valid", func(t *testing.T) {
		t.Parallel()

		rec := &user.Record{ExpireTime: time.Now().Add(time.Hour)}
		require.False(t, rec.IsTokenExpired())
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		t.Parallel()

		rec := &user.Record{ExpireTime: time.Now().Add(-time.Second)}
		require.True(t, rec.IsTokenExpired())
	})

	t.Run("zero value is expired", func(t *testing.T) {
		t.Parallel()

		rec := &user.Record{}
		require.True(t, rec.IsTokenExpired())
	})
}
