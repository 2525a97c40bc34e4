package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSchedulerService struct {
	calls []time.Time
	users []string
	err   error
}

func (s *stubSchedulerService) RunDailyTasks(ctx context.Context, now time.Time) (*dto.DailyRunResponse, error) {
	s.calls = append(s.calls, now)
	s.users = append(s.users, types.GetUserID(ctx))
	if s.err != nil {
		return nil, s.err
	}
	return &dto.DailyRunResponse{Success: true, Date: now.Format(types.DateLayout)}, nil
}

func newTestScheduler(t *testing.T, spec string, svc *stubSchedulerService) (*Scheduler, error) {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Scheduler.Spec = spec
	return New(cfg, svc, schedule.NewResolver(schedule.DefaultTable(), schedule.FixedZone(8), 1), logger.NewNopLogger())
}

func TestNextRunUsesBillingTimezone(t *testing.T) {
	s, err := newTestScheduler(t, "0 8 * * *", &stubSchedulerService{})
	require.NoError(t, err)

	s.Start()
	defer func() { require.NoError(t, s.Stop(context.Background())) }()

	next := s.Next()
	require.False(t, next.IsZero())
	local := next.In(schedule.FixedZone(8))
	assert.Equal(t, 8, local.Hour())
	assert.Equal(t, 0, local.Minute())
}

func TestInvalidSpec(t *testing.T) {
	_, err := newTestScheduler(t, "every morning", &stubSchedulerService{})
	assert.True(t, ierr.IsValidation(err))
}

func TestRunDailyPassesClockAndSystemUser(t *testing.T) {
	svc := &stubSchedulerService{}
	s, err := newTestScheduler(t, "0 8 * * *", svc)
	require.NoError(t, err)

	fixed := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	s.runDaily()

	require.Len(t, svc.calls, 1)
	assert.Equal(t, fixed, svc.calls[0])
	assert.Equal(t, types.DefaultUserID, svc.users[0])
}

func TestRunDailySurvivesServiceError(t *testing.T) {
	svc := &stubSchedulerService{err: errors.New("database unavailable")}
	s, err := newTestScheduler(t, "0 8 * * *", svc)
	require.NoError(t, err)

	assert.NotPanics(t, s.runDaily)
	assert.Len(t, svc.calls, 1)
}
