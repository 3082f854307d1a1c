package controllers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

// CronController exposes the scheduled batch jobs over HTTP so an
// external scheduler can drive them. A shared bearer secret guards the
// endpoints; when no secret is configured they are open.
type CronController struct {
	billingService services.BillingService
	reportService  services.ReportService
	cronSecret     string
}

func NewCronController(billingService services.BillingService, reportService services.ReportService, cronSecret string) *CronController {
	return &CronController{
		billingService: billingService,
		reportService:  reportService,
		cronSecret:     cronSecret,
	}
}

func (cr *CronController) authorized(c *gin.Context) bool {
	if cr.cronSecret == "" {
		return true
	}
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(cr.cronSecret)) == 1
}

// Billing triggers one recurring-billing pass over users due today.
func (cr *CronController) Billing(c *gin.Context) {
	if !cr.authorized(c) {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid cron secret")
		return
	}

	summary, err := cr.billingService.RunBillingCycle(c.Request.Context(), utils.Today())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, summary, "")
}

// DailyReport triggers one daily-report pass over paid users who have
// not received today's reading yet.
func (cr *CronController) DailyReport(c *gin.Context) {
	if !cr.authorized(c) {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid cron secret")
		return
	}

	summary, err := cr.reportService.RunDailyReports(c.Request.Context(), utils.Today())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, summary, "")
}
