// Package health exposes a readiness endpoint over the login stack's
// backing services: the Postgres pool, Redis, and anything else wired
// in as a named probe.
package health

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Probe checks one dependency. A nil error means healthy.
type Probe func(ctx context.Context) error

// Probes maps dependency names to their checks.
type Probes map[string]Probe

// Postgres probes a pgx pool.
func Postgres(pool *pgxpool.Pool) Probe {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

// Redis probes a redis client.
func Redis(client redis.UniversalClient) Probe {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Option configures the handler.
type Option func(*settings)

type settings struct {
	timeout time.Duration
	log     *slog.Logger
}

// WithTimeout bounds the combined probe run. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

// Handler returns an http.Handler that runs every probe in parallel and
// reports 200 with per-check statuses, or 503 when any probe fails.
func Handler(probes Probes, opts ...Option) http.Handler {
	s := &settings{
		timeout: defaultTimeout,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()

		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			checks = make(map[string]string, len(probes))
			failed bool
		)
		for name, probe := range probes {
			wg.Add(1)
			go func() {
				defer wg.Done()

				status := "ok"
				if err := probe(ctx); err != nil {
					status = err.Error()
					s.log.WarnContext(ctx, "health probe failed",
						slog.String("probe", name),
						slog.Any("error", err))
				}
				mu.Lock()
				checks[name] = status
				failed = failed || status != "ok"
				mu.Unlock()
			}()
		}
		wg.Wait()

		rep := report{Status: "healthy", Checks: checks}
		code := http.StatusOK
		if failed {
			rep.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(rep)
	})
}
