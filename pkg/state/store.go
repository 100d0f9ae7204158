package state

import (
	"context"
	"time"
)

// Store is the persistence contract for state tokens.
type Store interface {
	// Save persists a new token.
	Save(ctx context.Context, t *Token) error

	// Consume atomically finds the token matching the value that is
	// unused and unexpired at now, marks it used, and returns it.
	// Returns ErrNotFound when nothing matches. Implementations must
	// guarantee that concurrent calls with the same value succeed at
	// most once; a read-then-write sequence is not acceptable.
	Consume(ctx context.Context, value string, now time.Time) (*Token, error)

	// DeleteExpired removes every token, used or not, whose expiry lies
	// before now. Returns the number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
