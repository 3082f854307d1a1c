package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

// WebhookController receives provider callbacks. Signatures are checked
// against the raw body before anything is parsed.
type WebhookController struct {
	paymentService       services.PaymentService
	userService          services.UserService
	paymentWebhookSecret string
	identityVerifier     *svix.Webhook
}

func NewWebhookController(
	paymentService services.PaymentService,
	userService services.UserService,
	paymentWebhookSecret string,
	identityVerifier *svix.Webhook,
) *WebhookController {
	return &WebhookController{
		paymentService:       paymentService,
		userService:          userService,
		paymentWebhookSecret: paymentWebhookSecret,
		identityVerifier:     identityVerifier,
	}
}

// Payments handles payment-processor events signed with a single
// HMAC-SHA512 header over the raw body.
func (w *WebhookController) Payments(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to read request body")
		return
	}

	if !utils.VerifyPaymentSignature(w.paymentWebhookSecret, body, c.GetHeader("toss-signature")) {
		logrus.Warn("payment webhook rejected: bad signature")
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid webhook signature")
		return
	}

	if err := w.paymentService.ProcessWebhook(c.Request.Context(), body); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "")
}

// Identity handles identity-provider lifecycle events. Verification,
// including the timestamp-tolerance window that shuts out replayed
// deliveries, is delegated to the provider's webhook library.
func (w *WebhookController) Identity(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to read request body")
		return
	}

	if err := w.identityVerifier.Verify(body, c.Request.Header); err != nil {
		logrus.Warnf("identity webhook rejected: %v", err)
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid webhook signature")
		return
	}

	if err := w.userService.HandleIdentityEvent(c.Request.Context(), body); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "")
}
