// Package fixture seeds provider configs from YAML, for development and
// demo environments.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/oauthkit/baiduauth/pkg/config"
)

// ErrDecode indicates a fixture document that is not a valid YAML list
// of provider configs.
var ErrDecode = errors.New("fixture: decode failed")

type entry struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Scope        string `yaml:"scope"`
	Active       *bool  `yaml:"active"`
}

// Load reads a YAML list of provider configs and saves each through the
// store. Entries default to active; client_id and client_secret are
// required. The number of configs saved is returned.
func Load(ctx context.Context, r io.Reader, store config.Store) (int, error) {
	var entries []entry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		return 0, errors.Join(ErrDecode, err)
	}

	for i, e := range entries {
		if e.ClientID == "" || e.ClientSecret == "" {
			return i, fmt.Errorf("%w: entry %d missing client_id or client_secret", ErrDecode, i)
		}

		cfg := config.New(e.ClientID, e.ClientSecret)
		cfg.Scope = e.Scope
		if e.Active != nil {
			cfg.Active = *e.Active
		}
		if err := store.Save(ctx, cfg); err != nil {
			return i, fmt.Errorf("fixture: save entry %d: %w", i, err)
		}
	}
	return len(entries), nil
}
