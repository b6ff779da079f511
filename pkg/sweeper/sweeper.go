package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/settings"
)

const defaultMaxTime = int64(14 * 24 * 60 * 60)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule validates a cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, expr, err)
	}
	return schedule, nil
}

// Sweeper periodically deletes expired session rows.
type Sweeper struct {
	database *db.Database
	cron     *cron.Cron
	log      *slog.Logger
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimeout bounds a single sweep. Default: 1 minute.
func WithTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a sweeper for database running on schedule. It does nothing
// until Start.
func New(database *db.Database, schedule string, opts ...Option) (*Sweeper, error) {
	sched, err := ParseSchedule(schedule)
	if err != nil {
		return nil, err
	}

	s := &Sweeper{
		database: database,
		log:      logger.NewNope(),
		now:      time.Now,
		timeout:  time.Minute,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s.cron.Schedule(sched, cron.FuncJob(s.run))
	return s, nil
}

// Sweep deletes every session idle for at least the configured maximum
// and returns how many rows were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	reg := db.NewRegistry(map[string]*db.Database{db.DefaultName: s.database}, db.WithRegistryLogger(s.log))
	defer func() { _ = reg.Close(context.WithoutCancel(ctx)) }()

	gw := reg.Default()
	maxTime, err := settings.New(gw, settings.WithLogger(s.log)).Int(ctx, auth.PropertySessionMaxTime, defaultMaxTime)
	if err != nil {
		return 0, err
	}

	return entity.NewSessions(gw).DeleteIdle(ctx, s.now().Unix()-maxTime)
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.Sweep(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "session sweep failed", slog.String("error", err.Error()))
		return
	}
	s.log.InfoContext(ctx, "expired sessions removed",
		slog.Int64("count", n),
		slog.Duration("took", time.Since(start)),
	)
}

// Start begins running the schedule. Sweeps inherit ctx values and stop
// when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.log.InfoContext(ctx, "session sweeper started")
	return nil
}

// Stop halts the schedule and waits for a running sweep until ctx ends.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	if s.cancel != nil {
		defer s.cancel()
	}

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrStopTimeout, ctx.Err())
	}
}

// StartFunc adapts Start to a startup hook.
func (s *Sweeper) StartFunc() func(context.Context) error {
	return s.Start
}

// Shutdown adapts Stop to a shutdown hook.
func (s *Sweeper) Shutdown() func(context.Context) error {
	return s.Stop
}
