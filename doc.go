// Package baiduauth implements server-side Baidu OAuth2 login: the
// authorization-code flow with anti-CSRF state tokens, code-for-token
// exchange, profile retrieval, and reconciliation into local user
// records.
//
// The Service type is the façade over the flow. Persistence is
// pluggable through the config, state, and user store contracts, with
// in-memory and Postgres implementations provided. pkg/handler mounts
// the login and callback routes on chi, and pkg/maintenance schedules
// the periodic state cleanup and token refresh jobs on river.
//
// A minimal login round trip:
//
//	svc, err := baiduauth.New(configs, states, tokens, users)
//	if err != nil { ... }
//
//	// redirect the browser here
//	authURL, err := svc.StartLogin(ctx, sessionID)
//
//	// on the callback
//	rec, err := svc.CompleteLogin(ctx, code, stateValue)
//
// See examples/server for full wiring against Postgres and Redis.
package baiduauth
