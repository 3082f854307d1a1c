package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jangguenhee/vmc-saju/internal/models/request_models"
	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

type AnalysisController struct {
	analysisService services.AnalysisService
	userService     services.UserService
}

func NewAnalysisController(analysisService services.AnalysisService, userService services.UserService) *AnalysisController {
	return &AnalysisController{
		analysisService: analysisService,
		userService:     userService,
	}
}

// ensureCaller backfills the local user row from the verified token
// claims before any operation that reads it.
func (a *AnalysisController) ensureCaller(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "로그인이 필요합니다.")
		return "", false
	}

	var name *string
	if n := c.GetString("user_name"); n != "" {
		name = &n
	}
	if _, err := a.userService.EnsureUser(c.Request.Context(), userID, c.GetString("user_email"), name); err != nil {
		utils.HandleServiceError(c, err)
		return "", false
	}
	return userID, true
}

// Create godoc
// @Summary Create a saju analysis
// @Description Generate a new reading for the caller's birth details
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body request_models.CreateAnalysisRequest true "Birth details payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /analysis [post]
func (a *AnalysisController) Create(c *gin.Context) {
	userID, ok := a.ensureCaller(c)
	if !ok {
		return
	}

	var req request_models.CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "필수 정보를 입력해주세요. (이름, 생년월일, 성별)")
		return
	}

	created, err := a.analysisService.CreateAnalysis(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, created, "분석이 완료되었습니다.")
}

// Get godoc
// @Summary Get a single analysis
// @Description Fetch one analysis owned by the caller
// @Tags Analysis
// @Produce json
// @Param id path string true "Analysis id"
// @Success 200 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /analysis/{id} [get]
func (a *AnalysisController) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "로그인이 필요합니다.")
		return
	}

	detail, err := a.analysisService.GetAnalysis(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, detail, "")
}

// History godoc
// @Summary List recent analyses
// @Description Last 10 analyses plus today's daily report if present
// @Tags Analysis
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /analysis/history [get]
func (a *AnalysisController) History(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "로그인이 필요합니다.")
		return
	}

	history, err := a.analysisService.History(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, history, "")
}
