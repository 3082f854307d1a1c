package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

type SubscriptionController struct {
	subscriptionService services.SubscriptionService
	userService         services.UserService
}

func NewSubscriptionController(subscriptionService services.SubscriptionService, userService services.UserService) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
		userService:         userService,
	}
}

// Status godoc
// @Summary Get subscription status
// @Description Plan, remaining trial credits, masked billing key, billing dates
// @Tags Subscription
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscription/status [get]
func (s *SubscriptionController) Status(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "로그인이 필요합니다.")
		return
	}

	var name *string
	if n := c.GetString("user_name"); n != "" {
		name = &n
	}
	if _, err := s.userService.EnsureUser(c.Request.Context(), userID, c.GetString("user_email"), name); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	status, err := s.subscriptionService.Status(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, status, "")
}

// Cancel godoc
// @Summary Cancel the subscription
// @Description Stop renewal; paid access lasts until the next billing date
// @Tags Subscription
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /subscription/cancel [post]
func (s *SubscriptionController) Cancel(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "로그인이 필요합니다.")
		return
	}

	result, err := s.subscriptionService.Cancel(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "구독이 해지되었습니다.")
}
