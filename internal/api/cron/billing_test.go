package cron

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/netcycle/netcycle/internal/api/dto"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/rest/middleware"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingScheduler struct {
	now  time.Time
	user string
}

func (r *recordingScheduler) RunDailyTasks(ctx context.Context, now time.Time) (*dto.DailyRunResponse, error) {
	r.now = now
	r.user = types.GetUserID(ctx)
	return &dto.DailyRunResponse{Success: true, Date: now.Format(types.DateLayout)}, nil
}

func newTestEngine(svc *recordingScheduler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()
	h := NewBillingHandler(svc, schedule.NewResolver(schedule.DefaultTable(), schedule.FixedZone(8), 1), log)

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	r.POST("/cron/billing/daily", h.RunDailyTasks)
	return r
}

func TestRunDailyTasksForDate(t *testing.T) {
	svc := &recordingScheduler{}
	r := newTestEngine(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cron/billing/daily?date=2026-03-10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-03-10", svc.now.In(schedule.FixedZone(8)).Format(types.DateLayout))
	assert.Equal(t, types.DefaultUserID, svc.user)

	var resp dto.DailyRunResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestRunDailyTasksRejectsBadDate(t *testing.T) {
	svc := &recordingScheduler{}
	r := newTestEngine(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cron/billing/daily?date=10-03-2026", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
	assert.True(t, svc.now.IsZero())
}
