package scheduler

import (
	"context"
	"time"

	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/service"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/robfig/cron/v3"
)

// runTimeout bounds a single daily run
const runTimeout = 30 * time.Minute

// Scheduler triggers the daily billing run on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	service service.SchedulerService
	logger  *logger.Logger
	spec    string
	now     func() time.Time
}

// New parses the configured schedule. Expressions without CRON_TZ are
// evaluated in the billing timezone.
func New(cfg *config.Configuration, svc service.SchedulerService, resolver *schedule.Resolver, log *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		service: svc,
		logger:  log,
		spec:    cfg.Scheduler.Spec,
		now:     time.Now,
	}

	cl := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithLocation(resolver.Location()),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := s.cron.AddFunc(s.spec, s.runDaily); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invalid scheduler spec %q", s.spec).
			Mark(ierr.ErrValidation)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Infow("starting billing scheduler", "spec", s.spec)
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports when the daily run fires next
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	ctx = types.SetUserID(ctx, types.DefaultUserID)

	resp, err := s.service.RunDailyTasks(ctx, s.now())
	if err != nil {
		s.logger.Errorw("daily billing run failed", "error", err)
		return
	}
	if !resp.Success {
		s.logger.Warnw("daily billing run finished with errors", "date", resp.Date, "errors", resp.Errors)
		return
	}
	s.logger.Infow("daily billing run finished", "date", resp.Date, "generated_units", len(resp.Generation))
}

// cronLogger adapts the zap logger to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
