package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/netcycle/netcycle/internal/api/dto"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/service"
)

type BillingHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewBillingHandler(service service.BillingService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{service: service, log: log}
}

// @Summary Generate invoices
// @Description Generate the recurring invoices of one business unit for a billing month
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.GenerateInvoicesRequest true "Billing month"
// @Success 200 {object} dto.GenerateInvoicesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /billing/generate [post]
func (h *BillingHandler) GenerateInvoices(c *gin.Context) {
	var req dto.GenerateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GenerateInvoices(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get billing schedule
// @Description Resolve the billing dates of a business unit for a month
// @Tags Billing
// @Produce json
// @Param business_unit_id query string true "Business unit ID"
// @Param year query int true "Year"
// @Param month query int true "Month"
// @Success 200 {object} dto.BillingScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /billing/schedule [get]
func (h *BillingHandler) GetBillingSchedule(c *gin.Context) {
	var req dto.BillingScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetBillingSchedule(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
