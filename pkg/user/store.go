package user

import (
	"context"
	"time"
)

// Store is the persistence contract for user records. Implementations
// must enforce uniqueness on BaiduUID so concurrent upserts for the same
// account cannot create duplicate rows.
type Store interface {
	// FindByBaiduUID returns the record for the given Baidu uid.
	// Returns ErrNotFound when it does not exist.
	FindByBaiduUID(ctx context.Context, uid string) (*Record, error)

	// FindExpired returns every record whose token expired before now.
	FindExpired(ctx context.Context, now time.Time) ([]*Record, error)

	// Save inserts or updates a record, keyed by BaiduUID.
	Save(ctx context.Context, r *Record) error
}
