package state

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oauthkit/baiduauth/pkg/config"
)

// PostgresStore persists tokens in the baidu_oauth2_state table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, t *Token) error {
	var configID any
	if t.Config != nil {
		configID = t.Config.ID
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO baidu_oauth2_state (id, value, config_id, expires_at, used, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Value, configID, t.ExpiresAt, t.Used, nullableString(t.SessionID), t.CreatedAt)
	return err
}

// Consume relies on a conditional UPDATE so the find-and-mark step is a
// single atomic statement; concurrent consumers of the same value get
// exactly one row back.
func (s *PostgresStore) Consume(ctx context.Context, value string, now time.Time) (*Token, error) {
	var t Token
	var sessionID *string
	var configID *string

	err := s.pool.QueryRow(ctx, `
		UPDATE baidu_oauth2_state
		SET used = TRUE
		WHERE value = $1 AND NOT used AND expires_at > $2
		RETURNING id, value, config_id, expires_at, used, session_id, created_at`,
		value, now,
	).Scan(&t.ID, &t.Value, &configID, &t.ExpiresAt, &t.Used, &sessionID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sessionID != nil {
		t.SessionID = *sessionID
	}

	if configID != nil {
		cfg, err := s.loadConfig(ctx, *configID)
		if err != nil {
			return nil, err
		}
		t.Config = cfg
	}

	return &t, nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM baidu_oauth2_state WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) loadConfig(ctx context.Context, id string) (*config.Config, error) {
	var c config.Config
	var scope *string
	err := s.pool.QueryRow(ctx, `
		SELECT id, client_id, client_secret, scope, active, created_at
		FROM baidu_oauth2_config
		WHERE id = $1`, id,
	).Scan(&c.ID, &c.ClientID, &c.ClientSecret, &scope, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Config deleted after the token was issued; the token keeps
			// a dangling reference and the flow fails upstream.
			return nil, config.ErrNotFound
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
