package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oauthkit/baiduauth/pkg/config"
)

// PostgresStore persists records in the baidu_oauth2_user table. The
// table carries a unique index on baidu_uid and Save upserts against it,
// so racing upserts for one account collapse into insert-then-update.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindByBaiduUID(ctx context.Context, uid string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT u.id, u.baidu_uid, u.access_token, u.expires_in, u.expire_time,
		       u.refresh_token, u.username, u.avatar, u.raw_profile,
		       u.created_at, u.updated_at,
		       c.id, c.client_id, c.client_secret, c.scope, c.active, c.created_at
		FROM baidu_oauth2_user u
		LEFT JOIN baidu_oauth2_config c ON c.id = u.config_id
		WHERE u.baidu_uid = $1`, uid)
	return scanRecord(row)
}

func (s *PostgresStore) FindExpired(ctx context.Context, now time.Time) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.baidu_uid, u.access_token, u.expires_in, u.expire_time,
		       u.refresh_token, u.username, u.avatar, u.raw_profile,
		       u.created_at, u.updated_at,
		       c.id, c.client_id, c.client_secret, c.scope, c.active, c.created_at
		FROM baidu_oauth2_user u
		LEFT JOIN baidu_oauth2_config c ON c.id = u.config_id
		WHERE u.expire_time <= $1`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Save(ctx context.Context, r *Record) error {
	var raw []byte
	if r.RawProfile != nil {
		var err error
		raw, err = json.Marshal(r.RawProfile)
		if err != nil {
			return err
		}
	}

	var configID any
	if r.Config != nil {
		configID = r.Config.ID
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO baidu_oauth2_user
			(id, baidu_uid, access_token, expires_in, expire_time, refresh_token,
			 username, avatar, raw_profile, config_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (baidu_uid) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			expires_in = EXCLUDED.expires_in,
			expire_time = EXCLUDED.expire_time,
			refresh_token = EXCLUDED.refresh_token,
			username = EXCLUDED.username,
			avatar = EXCLUDED.avatar,
			raw_profile = EXCLUDED.raw_profile,
			config_id = EXCLUDED.config_id,
			updated_at = now()
		RETURNING id, created_at, updated_at`,
		r.ID, r.BaiduUID, r.AccessToken, r.ExpiresIn, r.ExpireTime,
		nullableString(r.RefreshToken), nullableString(r.Username), nullableString(r.Avatar),
		raw, configID,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*Record, error) {
	var r Record
	var refreshToken, username, avatar *string
	var raw []byte
	var cfgID, cfgClientID, cfgSecret, cfgScope *string
	var cfgActive *bool
	var cfgCreatedAt *time.Time

	err := row.Scan(&r.ID, &r.BaiduUID, &r.AccessToken, &r.ExpiresIn, &r.ExpireTime,
		&refreshToken, &username, &avatar, &raw,
		&r.CreatedAt, &r.UpdatedAt,
		&cfgID, &cfgClientID, &cfgSecret, &cfgScope, &cfgActive, &cfgCreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if refreshToken != nil {
		r.RefreshToken = *refreshToken
	}
	if username != nil {
		r.Username = *username
	}
	if avatar != nil {
		r.Avatar = *avatar
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &r.RawProfile); err != nil {
			return nil, err
		}
	}
	if cfgID != nil {
		c := &config.Config{ClientID: *cfgClientID, ClientSecret: *cfgSecret, Active: *cfgActive, CreatedAt: *cfgCreatedAt}
		if err := c.ID.UnmarshalText([]byte(*cfgID)); err != nil {
			return nil, err
		}
		if cfgScope != nil {
			c.Scope = *cfgScope
		}
		r.Config = c
	}

	return &r, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
