// Package handler mounts the Baidu login flow on an HTTP router: the
// login redirect and the provider callback, with hooks for applications
// to take over after a login succeeds or fails.
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oauthkit/baiduauth"
	"github.com/oauthkit/baiduauth/pkg/apiclient"
	"github.com/oauthkit/baiduauth/pkg/token"
	"github.com/oauthkit/baiduauth/pkg/user"
)

// SessionCookie is the cookie the login route reads the session id from.
const SessionCookie = "sid"

// SuccessHook runs after a completed login, before any response is
// written. Writing to w claims the response; otherwise a plain 200 is
// sent.
type SuccessHook func(w http.ResponseWriter, r *http.Request, rec *user.Record) bool

// FailureHook observes a failed callback. The error response has
// already been chosen; the hook is for logging, metrics, or cleanup.
type FailureHook func(r *http.Request, err error)

// Handler serves the login and callback routes.
type Handler struct {
	svc       *baiduauth.Service
	log       *slog.Logger
	onSuccess SuccessHook
	onFailure FailureHook
}

// Option configures the handler.
type Option func(*Handler)

// WithSuccessHook installs the post-login hook.
func WithSuccessHook(h SuccessHook) Option {
	return func(hd *Handler) { hd.onSuccess = h }
}

// WithFailureHook installs the failed-callback observer.
func WithFailureHook(h FailureHook) Option {
	return func(hd *Handler) { hd.onFailure = h }
}

// WithLogger sets the logger. Default: discard.
func WithLogger(log *slog.Logger) Option {
	return func(hd *Handler) {
		if log != nil {
			hd.log = log
		}
	}
}

// New creates a handler over the service.
func New(svc *baiduauth.Service, opts ...Option) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: service is required")
	}

	h := &Handler{
		svc: svc,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Routes returns a router serving /baidu-oauth2/login and
// /baidu-oauth2/callback, wrapped in request-id and panic recovery
// middleware. Mount it at the application root so the callback path
// matches the redirect URI registered with Baidu.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID, Recover(h.log))
	r.Get("/baidu-oauth2/login", h.login)
	r.Get("/baidu-oauth2/callback", h.callback)
	return r
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if c, err := r.Cookie(SessionCookie); err == nil {
		sessionID = c.Value
	}

	authURL, err := h.svc.StartLogin(r.Context(), sessionID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "login start failed", slog.Any("error", err))
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// The provider reports user denial and its own errors via the error
	// query param instead of a code.
	if errParam := q.Get("error"); errParam != "" {
		h.fail(w, r, errors.New("provider error: "+errParam), http.StatusBadRequest)
		return
	}

	code, stateValue := q.Get("code"), q.Get("state")
	if code == "" || stateValue == "" {
		h.fail(w, r, errors.New("missing code or state"), http.StatusBadRequest)
		return
	}

	rec, err := h.svc.CompleteLogin(r.Context(), code, stateValue)
	if err != nil {
		h.fail(w, r, err, callbackStatus(err))
		return
	}

	if h.onSuccess != nil && h.onSuccess(w, r, rec) {
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("login successful"))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, status int) {
	h.log.WarnContext(r.Context(), "callback rejected",
		slog.Any("error", err),
		slog.Int("status", status))
	if h.onFailure != nil {
		h.onFailure(r, err)
	}
	http.Error(w, "login failed", status)
}

// callbackStatus maps a login pipeline failure to an HTTP status.
// Client-triggerable conditions are 400, provider outages 502, and
// everything else 500.
func callbackStatus(err error) int {
	switch {
	case errors.Is(err, baiduauth.ErrInvalidState),
		errors.Is(err, user.ErrMissingUserID),
		errors.Is(err, baiduauth.ErrMissingAccessToken),
		errors.Is(err, token.ErrInvalidResponse),
		errors.Is(err, user.ErrInvalidResponse):
		return http.StatusBadRequest
	case errors.Is(err, apiclient.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
