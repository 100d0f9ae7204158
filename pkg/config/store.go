package config

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract for provider configs.
type Store interface {
	// FindActive returns the most recently created active config.
	// Returns ErrNotFound when no active config exists.
	FindActive(ctx context.Context) (*Config, error)

	// FindByClientID returns the config with the given client id.
	// Returns ErrNotFound when it does not exist.
	FindByClientID(ctx context.Context, clientID string) (*Config, error)

	// Save inserts or updates a config by ID.
	Save(ctx context.Context, cfg *Config) error

	// Delete removes a config. Live state tokens and user records keep
	// their reference; no cascade happens.
	Delete(ctx context.Context, id uuid.UUID) error
}
