// Package config manages Baidu OAuth2 provider configurations: the
// client credential records, their store contract, and an explicit
// read-through cache used on the hot login path.
package config

import (
	"time"

	"github.com/google/uuid"
)

// DefaultScope is used when a config carries no scope of its own.
const DefaultScope = "basic"

// Config is a provider configuration. At most one config should be
// active at a time; lookups pick the most recently created active one.
// A config handed to a login flow is treated as immutable: edits only
// affect future authorizations.
type Config struct {
	ID           uuid.UUID `json:"id"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scope        string    `json:"scope,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// New creates an active config with a fresh ID.
func New(clientID, clientSecret string) *Config {
	return &Config{
		ID:           uuid.New(),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Active:       true,
		CreatedAt:    time.Now(),
	}
}

// EffectiveScope returns the config's scope, or DefaultScope when unset.
func (c *Config) EffectiveScope() string {
	if c.Scope == "" {
		return DefaultScope
	}
	return c.Scope
}
