package config

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists configs in the baidu_oauth2_config table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const configColumns = `id, client_id, client_secret, scope, active, created_at`

func (s *PostgresStore) FindActive(ctx context.Context) (*Config, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+configColumns+`
		FROM baidu_oauth2_config
		WHERE active
		ORDER BY created_at DESC
		LIMIT 1`)
	return scanConfig(row)
}

func (s *PostgresStore) FindByClientID(ctx context.Context, clientID string) (*Config, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+configColumns+`
		FROM baidu_oauth2_config
		WHERE client_id = $1
		LIMIT 1`, clientID)
	return scanConfig(row)
}

func (s *PostgresStore) Save(ctx context.Context, cfg *Config) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO baidu_oauth2_config (id, client_id, client_secret, scope, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			scope = EXCLUDED.scope,
			active = EXCLUDED.active`,
		cfg.ID, cfg.ClientID, cfg.ClientSecret, nullableString(cfg.Scope), cfg.Active, cfg.CreatedAt)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM baidu_oauth2_config WHERE id = $1`, id)
	return err
}

func scanConfig(row pgx.Row) (*Config, error) {
	var c Config
	var scope *string
	err := row.Scan(&c.ID, &c.ClientID, &c.ClientSecret, &scope, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if scope != nil {
		c.Scope = *scope
	}
	return &c, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
