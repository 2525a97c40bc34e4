package cron

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/netcycle/netcycle/internal/domain/schedule"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/service"
	"github.com/netcycle/netcycle/internal/types"
)

// BillingHandler exposes the daily billing run for external cron callers
type BillingHandler struct {
	scheduler service.SchedulerService
	resolver  *schedule.Resolver
	logger    *logger.Logger
}

func NewBillingHandler(scheduler service.SchedulerService, resolver *schedule.Resolver, logger *logger.Logger) *BillingHandler {
	return &BillingHandler{
		scheduler: scheduler,
		resolver:  resolver,
		logger:    logger,
	}
}

// RunDailyTasks runs today's billing tasks. A date query parameter
// (YYYY-MM-DD, billing timezone) replays a missed day.
func (h *BillingHandler) RunDailyTasks(c *gin.Context) {
	now := time.Now()
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation(types.DateLayout, date, h.resolver.Location())
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("date must be formatted as YYYY-MM-DD").
				Mark(ierr.ErrValidation))
			return
		}
		// noon keeps the instant inside the requested local day
		now = day.Add(12 * time.Hour)
	}

	h.logger.Infow("starting daily billing cron job", "time", now.UTC().Format(time.RFC3339))

	ctx := types.SetUserID(c.Request.Context(), types.DefaultUserID)
	resp, err := h.scheduler.RunDailyTasks(ctx, now)
	if err != nil {
		c.Error(err)
		return
	}

	h.logger.Infow("completed daily billing cron job",
		"date", resp.Date,
		"success", resp.Success,
		"generated_units", len(resp.Generation),
	)
	c.JSON(http.StatusOK, resp)
}
