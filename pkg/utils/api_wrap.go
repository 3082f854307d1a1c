package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIResponse is the uniform envelope for every JSON endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
		TraceID: traceID(c),
	})
}

func RespondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps service-layer sentinel errors onto status
// codes and machine-readable error codes.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "필수 정보를 입력해주세요. (이름, 생년월일, 성별)")
	case errors.Is(err, ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "로그인이 필요합니다.")
	case errors.Is(err, ErrForbidden):
		RespondError(c, http.StatusForbidden, "FORBIDDEN", "이 리소스에 접근할 권한이 없습니다.")
	case errors.Is(err, ErrFreeTrialExhausted):
		RespondError(c, http.StatusForbidden, "FREE_TRIAL_EXHAUSTED", "무료 체험 횟수를 모두 사용했습니다. 구독을 시작해보세요!")
	case errors.Is(err, ErrNotEntitled):
		RespondError(c, http.StatusForbidden, "NOT_ENTITLED", "현재 플랜에서는 분석을 생성할 수 없습니다.")
	case errors.Is(err, ErrDailyLimitReached):
		RespondError(c, http.StatusTooManyRequests, "DAILY_LIMIT_REACHED", "오늘 이미 분석을 생성했습니다. 내일 다시 시도해주세요.")
	case errors.Is(err, ErrNotFound):
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "요청하신 리소스를 찾을 수 없습니다.")
	case errors.Is(err, ErrNoActiveSubscription):
		RespondError(c, http.StatusBadRequest, "NO_ACTIVE_SUBSCRIPTION", "활성화된 구독이 없습니다.")
	case errors.Is(err, ErrPaymentFailed):
		logrus.Errorf("Payment error: %v", err)
		RespondError(c, http.StatusBadGateway, "PAYMENT_FAILED", "결제 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.")
	case errors.Is(err, ErrAIValidationFailed):
		logrus.Errorf("AI validation error: %v", err)
		RespondError(c, http.StatusInternalServerError, "AI_VALIDATION_FAILED", "AI 응답 형식이 올바르지 않습니다. 다시 시도해주세요.")
	case errors.Is(err, ErrAIGenerationFailed):
		logrus.Errorf("AI generation error: %v", err)
		RespondError(c, http.StatusInternalServerError, "AI_GENERATION_FAILED", "AI 분석 생성 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.")
	case errors.Is(err, ErrDatabaseError):
		logrus.Errorf("Database error: %v", err)
		RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "처리 중 오류가 발생했습니다.")
	default:
		logrus.Errorf("Unknown error: %v", err)
		RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "처리 중 오류가 발생했습니다.")
	}
}
