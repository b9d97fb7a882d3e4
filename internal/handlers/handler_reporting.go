package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
	now              func() time.Time
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/profit-and-loss", h.getProfitAndLoss)
		reportingGroup.GET("/balance-sheet", h.getBalanceSheet)
	}
}

// dateQuery reads an optional YYYY-MM-DD query parameter, falling back to today.
func (h *reportingHandler) dateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return h.now(), nil
	}
	t, err := dto.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("%s: %s", name, err.Error())
	}
	return t, nil
}

// requiredDateQuery reads a mandatory YYYY-MM-DD query parameter.
func requiredDateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError("%s query parameter is required", name)
	}
	t, err := dto.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("%s: %s", name, err.Error())
	}
	return t, nil
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance of posted activity up to and including a date
// @Tags reports
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate trial balance"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	asOf, err := h.dateQuery(c, "asOf")
	if err != nil {
		respondError(c, err, "generate trial balance")
		return
	}

	report, err := h.reportingService.GetTrialBalance(c.Request.Context(), tenantID, asOf, userID)
	if err != nil {
		respondError(c, err, "generate trial balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}

// getProfitAndLoss godoc
// @Summary Generate profit and loss report
// @Description Generates revenue, expenses and net income for an inclusive date range
// @Tags reports
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate profit and loss report"
// @Security BearerAuth
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	startDate, err := requiredDateQuery(c, "startDate")
	if err != nil {
		respondError(c, err, "generate profit and loss report")
		return
	}
	endDate, err := requiredDateQuery(c, "endDate")
	if err != nil {
		respondError(c, err, "generate profit and loss report")
		return
	}

	report, err := h.reportingService.GetProfitAndLoss(c.Request.Context(), tenantID, startDate, endDate, userID)
	if err != nil {
		respondError(c, err, "generate profit and loss report")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfitAndLossResponse(report))
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Description Generates assets, liabilities and equity as of a date, with current earnings folded into equity
// @Tags reports
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate balance sheet"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	tenantID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	asOf, err := h.dateQuery(c, "asOf")
	if err != nil {
		respondError(c, err, "generate balance sheet")
		return
	}

	report, err := h.reportingService.GetBalanceSheet(c.Request.Context(), tenantID, asOf, userID)
	if err != nil {
		respondError(c, err, "generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report))
}
