package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/baiduauth/pkg/token"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("json object", func(t *testing.T) {
		t.Parallel()

		rec, err := token.Parse(`{"access_token":"T","expires_in":3600,"refresh_token":"R","scope":"basic"}`)
		require.NoError(t, err)
		require.Equal(t, "T", rec.AccessToken)
		require.Equal(t, 3600, rec.ExpiresIn)
		require.Equal(t, "R", rec.RefreshToken)
		require.Equal(t, "basic", rec.Raw["scope"])
	})

	t.Run("url-encoded form fallback", func(t *testing.T) {
		t.Parallel()

		rec, err := token.Parse("access_token=T&expires_in=2592000&refresh_token=R")
		require.NoError(t, err)
		require.Equal(t, "T", rec.AccessToken)
		require.Equal(t, 2592000, rec.ExpiresIn)
		require.Equal(t, "R", rec.RefreshToken)
	})

	t.Run("neither format decodes", func(t *testing.T) {
		t.Parallel()

		_, err := token.Parse("%%%")
		require.ErrorIs(t, err, token.ErrInvalidResponse)
	})

	t.Run("json null falls through to form", func(t *testing.T) {
		t.Parallel()

		_, err := token.Parse("null")
		require.NoError(t, err) // "null" parses as a form with key "null"
	})

	t.Run("missing fields leave zero values", func(t *testing.T) {
		t.Parallel()

		rec, err := token.Parse(`{"scope":"basic"}`)
		require.NoError(t, err)
		require.Empty(t, rec.AccessToken)
		require.Zero(t, rec.ExpiresIn)
		require.Empty(t, rec.RefreshToken)
	})

	t.Run("malformed expires_in collapses to zero", func(t *testing.T) {
		t.Parallel()

		rec, err := token.Parse(`{"access_token":"T","expires_in":"soon"}`)
		require.NoError(t, err)
		require.Zero(t, rec.ExpiresIn)

		rec, err = token.Parse(`{"access_token":"T","expires_in":3600.5}`)
		require.NoError(t, err)
		require.Zero(t, rec.ExpiresIn)
	})

	t.Run("numeric string expires_in accepted", func(t *testing.T) {
		t.Parallel()

		rec, err := token.Parse(`{"access_token":"T","expires_in":"3600"}`)
		require.NoError(t, err)
		require.Equal(t, 3600, rec.ExpiresIn)
	})
}
