package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/oauthkit/baiduauth/pkg/token"
	"github.com/oauthkit/baiduauth/pkg/user"
)

// StateJanitor purges expired state tokens.
type StateJanitor interface {
	Cleanup(ctx context.Context) (int64, error)
}

// TokenRefresher renews a user's access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, rec *user.Record) (*token.Record, error)
}

// UserSource lists users whose access tokens have expired.
type UserSource interface {
	FindExpired(ctx context.Context, now time.Time) ([]*user.Record, error)
}

type cleanupArgs struct{}

func (cleanupArgs) Kind() string { return "baiduauth:state_cleanup" }

type cleanupWorker struct {
	river.WorkerDefaults[cleanupArgs]
	janitor StateJanitor
	log     *slog.Logger
}

func (w *cleanupWorker) Work(ctx context.Context, _ *river.Job[cleanupArgs]) error {
	n, err := w.janitor.Cleanup(ctx)
	if err != nil {
		return err
	}
	w.log.InfoContext(ctx, "state cleanup completed", slog.Int64("removed", n))
	return nil
}

type refreshArgs struct{}

func (refreshArgs) Kind() string { return "baiduauth:token_refresh" }

type refreshWorker struct {
	river.WorkerDefaults[refreshArgs]
	refresher TokenRefresher
	users     UserSource
	log       *slog.Logger
}

// Work renews every expired token that has a refresh token on file.
// One user's failure never blocks the rest; background upkeep retries
// on the next tick anyway.
func (w *refreshWorker) Work(ctx context.Context, _ *river.Job[refreshArgs]) error {
	expired, err := w.users.FindExpired(ctx, time.Now())
	if err != nil {
		return err
	}

	var renewed, failed int
	for _, rec := range expired {
		if rec.RefreshToken == "" {
			continue
		}
		if _, err := w.refresher.Refresh(ctx, rec); err != nil {
			failed++
			w.log.WarnContext(ctx, "token refresh failed",
				slog.String("baidu_uid", rec.BaiduUID),
				slog.Any("error", err))
			continue
		}
		renewed++
	}

	w.log.InfoContext(ctx, "token refresh sweep completed",
		slog.Int("expired", len(expired)),
		slog.Int("renewed", renewed),
		slog.Int("failed", failed))
	return nil
}
