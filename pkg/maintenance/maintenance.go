// Package maintenance runs the periodic upkeep behind the login flow:
// purging expired state tokens and refreshing access tokens that are
// about to lapse. Jobs run on River with cron-style schedules.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"
)

const (
	// DefaultCleanupSchedule purges expired state tokens every ten
	// minutes, matching their lifetime.
	DefaultCleanupSchedule = "*/10 * * * *"

	// DefaultRefreshSchedule renews expired access tokens hourly.
	DefaultRefreshSchedule = "0 * * * *"

	maxWorkers = 10
)

var (
	ErrPoolRequired   = errors.New("maintenance: pgx pool is required")
	ErrAlreadyStarted = errors.New("maintenance: already started")
	ErrNotStarted     = errors.New("maintenance: not started")
)

// Manager owns the River client and its two periodic jobs.
type Manager struct {
	client *river.Client[pgx.Tx]
	log    *slog.Logger

	mu      sync.Mutex
	started bool
}

// Option configures the manager.
type Option func(*settings)

type settings struct {
	cleanupSchedule string
	refreshSchedule string
	log             *slog.Logger
}

// WithCleanupSchedule overrides the state cleanup cron spec.
func WithCleanupSchedule(spec string) Option {
	return func(s *settings) {
		if spec != "" {
			s.cleanupSchedule = spec
		}
	}
}

// WithRefreshSchedule overrides the token refresh cron spec.
func WithRefreshSchedule(spec string) Option {
	return func(s *settings) {
		if spec != "" {
			s.refreshSchedule = spec
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

// NewManager builds the runner. janitor and refresher carry the actual
// work; the manager only schedules them.
func NewManager(pool *pgxpool.Pool, janitor StateJanitor, refresher TokenRefresher, users UserSource, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	if janitor == nil || refresher == nil || users == nil {
		return nil, errors.New("maintenance: janitor, refresher, and user source are required")
	}

	s := &settings{
		cleanupSchedule: DefaultCleanupSchedule,
		refreshSchedule: DefaultRefreshSchedule,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &cleanupWorker{janitor: janitor, log: s.log})
	river.AddWorker(workers, &refreshWorker{refresher: refresher, users: users, log: s.log})

	periodic := make([]*river.PeriodicJob, 0, 2)
	for _, j := range []struct {
		spec string
		args river.JobArgs
	}{
		{s.cleanupSchedule, cleanupArgs{}},
		{s.refreshSchedule, refreshArgs{}},
	} {
		sched, err := parseCronSchedule(j.spec)
		if err != nil {
			return nil, fmt.Errorf("maintenance: invalid cron schedule %q: %w", j.spec, err)
		}
		args := j.args
		periodic = append(periodic, river.NewPeriodicJob(
			sched,
			func() (river.JobArgs, *river.InsertOpts) { return args, nil },
			&river.PeriodicJobOpts{RunOnStart: false},
		))
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("maintenance: create river client: %w", err)
	}

	return &Manager{client: client, log: s.log}, nil
}

// Start begins processing the periodic jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("maintenance: start client: %w", err)
	}
	m.started = true
	m.log.Info("maintenance manager started")
	return nil
}

// Stop waits for in-flight jobs and shuts the client down.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("maintenance: stop client: %w", err)
	}
	m.started = false
	m.log.Info("maintenance manager stopped")
	return nil
}

// Shutdown returns a shutdown function, for wiring into a run group.
func (m *Manager) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		return m.Stop(ctx)
	}
}

type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

func parseCronSchedule(expr string) (river.PeriodicSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}
