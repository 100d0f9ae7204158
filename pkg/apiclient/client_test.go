package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oauthkit/baiduauth/pkg/apiclient"
)

func TestExecute_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "v1", r.URL.Query().Get("p"))
		require.Equal(t, "baiduauth/1.0", r.Header.Get("User-Agent"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := apiclient.New()
	resp, err := c.Execute(context.Background(), "test op", srv.URL, apiclient.RequestOptions{
		Query:   url.Values{"p": {"v1"}},
		Headers: apiclient.DefaultHeaders("application/json"),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `{"ok":true}`, resp.Body)
}

func TestExecute_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := apiclient.New()
	resp, err := c.Execute(context.Background(), "test op", srv.URL, apiclient.RequestOptions{})
	require.Nil(t, resp)
	require.ErrorIs(t, err, apiclient.ErrProviderUnavailable)
	require.ErrorIs(t, err, apiclient.ErrHTTPStatus)
	require.NotErrorIs(t, err, apiclient.ErrTransport)
	require.Contains(t, err.Error(), "test op")
}

func TestExecute_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := apiclient.New()
	resp, err := c.Execute(context.Background(), "test op", srv.URL, apiclient.RequestOptions{})
	require.Nil(t, resp)
	require.ErrorIs(t, err, apiclient.ErrProviderUnavailable)
	require.ErrorIs(t, err, apiclient.ErrTransport)
}

func TestExecute_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := apiclient.New()
	_, err := c.Execute(context.Background(), "slow op", srv.URL, apiclient.RequestOptions{
		Timeout: 20 * time.Millisecond,
	})
	require.ErrorIs(t, err, apiclient.ErrProviderUnavailable)
	require.ErrorIs(t, err, apiclient.ErrTransport)
}

func TestDefaultHeaders(t *testing.T) {
	t.Parallel()

	h := apiclient.DefaultHeaders("text/html")
	require.Equal(t, "baiduauth/1.0", h.Get("User-Agent"))
	require.Equal(t, "text/html", h.Get("Accept"))
}
