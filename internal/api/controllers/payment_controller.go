package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jangguenhee/vmc-saju/internal/services"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

// PaymentController terminates the processor's hosted-checkout
// redirects. Both handlers always end in a browser redirect to the
// subscription page, never a JSON body.
type PaymentController struct {
	paymentService services.PaymentService
	appBaseURL     string
}

func NewPaymentController(paymentService services.PaymentService, appBaseURL string) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		appBaseURL:     strings.TrimRight(appBaseURL, "/"),
	}
}

func (p *PaymentController) redirect(c *gin.Context, query string) {
	c.Redirect(http.StatusFound, p.appBaseURL+"/subscription?"+query)
}

// Success handles the success redirect: approves the payment and
// activates the subscription before sending the browser on.
func (p *PaymentController) Success(c *gin.Context) {
	paymentKey := c.Query("paymentKey")
	orderID := c.Query("orderId")
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if paymentKey == "" || orderID == "" || err != nil {
		p.redirect(c, "error=invalid_request")
		return
	}

	// Checkout orders are "<userID>_<ts>"; the prefix names the payer.
	userID, _, _ := strings.Cut(orderID, "_")
	if userID == "" {
		p.redirect(c, "error=invalid_request")
		return
	}

	if err := p.paymentService.ConfirmCheckout(c.Request.Context(), userID, paymentKey, orderID, amount); err != nil {
		logrus.Errorf("checkout confirm failed for order %s: %v", orderID, err)
		switch {
		case errors.Is(err, utils.ErrNotFound):
			p.redirect(c, "error=user_not_found")
		case errors.Is(err, utils.ErrPaymentFailed):
			p.redirect(c, "error=payment_failed")
		default:
			p.redirect(c, "error=internal_error")
		}
		return
	}

	p.redirect(c, "success=true")
}

// Fail handles the fail redirect: records the attempt and passes the
// processor's error code through to the subscription page.
func (p *PaymentController) Fail(c *gin.Context) {
	orderID := c.Query("orderId")
	code := c.Query("code")
	if code == "" {
		code = "payment_failed"
	}

	if userID, _, _ := strings.Cut(orderID, "_"); userID != "" {
		p.paymentService.RecordCheckoutFailure(c.Request.Context(), userID, orderID)
	}

	p.redirect(c, "error="+url.QueryEscape(code))
}
