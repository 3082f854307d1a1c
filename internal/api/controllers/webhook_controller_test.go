package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
)

const identityWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"
const paymentWebhookSecret = "test_sk_webhook"

type stubPaymentSvc struct {
	webhookBodies [][]byte
}

func (s *stubPaymentSvc) ConfirmCheckout(ctx context.Context, userID, paymentKey, orderID string, amount int64) error {
	return nil
}

func (s *stubPaymentSvc) RecordCheckoutFailure(ctx context.Context, userID, orderID string) {}

func (s *stubPaymentSvc) ProcessWebhook(ctx context.Context, raw []byte) error {
	s.webhookBodies = append(s.webhookBodies, raw)
	return nil
}

type stubUserSvc struct {
	identityBodies [][]byte
}

func (s *stubUserSvc) EnsureUser(ctx context.Context, userID, email string, name *string) (*db_models.User, error) {
	return &db_models.User{ID: userID, Email: email}, nil
}

func (s *stubUserSvc) HandleIdentityEvent(ctx context.Context, raw []byte) error {
	s.identityBodies = append(s.identityBodies, raw)
	return nil
}

func newWebhookRouter(t *testing.T) (*gin.Engine, *stubPaymentSvc, *stubUserSvc) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := svix.NewWebhook(identityWebhookSecret)
	require.NoError(t, err)

	paymentSvc := &stubPaymentSvc{}
	userSvc := &stubUserSvc{}
	ctrl := NewWebhookController(paymentSvc, userSvc, paymentWebhookSecret, verifier)

	router := gin.New()
	router.POST("/webhooks/identity", ctrl.Identity)
	router.POST("/webhooks/payments", ctrl.Payments)
	return router, paymentSvc, userSvc
}

func signedIdentityRequest(t *testing.T, body []byte, ts time.Time) *http.Request {
	t.Helper()
	wh, err := svix.NewWebhook(identityWebhookSecret)
	require.NoError(t, err)
	signature, err := wh.Sign("msg_identity_1", ts, body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body))
	req.Header.Set("svix-id", "msg_identity_1")
	req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("svix-signature", signature)
	return req
}

func TestIdentityWebhook_AcceptsFreshSignedDelivery(t *testing.T) {
	router, _, userSvc := newWebhookRouter(t)
	body := []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedIdentityRequest(t, body, time.Now()))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, userSvc.identityBodies, 1)
	assert.Equal(t, body, userSvc.identityBodies[0])
}

// A delivery whose svix-timestamp is years in the past must be rejected
// even when the signature over (id, timestamp, body) is genuine,
// otherwise a captured delivery can be replayed indefinitely.
func TestIdentityWebhook_RejectsStaleTimestamp(t *testing.T) {
	router, _, userSvc := newWebhookRouter(t)
	body := []byte(`{"type":"user.deleted","data":{"id":"user_1"}}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedIdentityRequest(t, body, time.Unix(1451606400, 0)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, userSvc.identityBodies)
}

func TestIdentityWebhook_RejectsTamperedBody(t *testing.T) {
	router, _, userSvc := newWebhookRouter(t)
	signed := []byte(`{"type":"user.updated","data":{"id":"user_1"}}`)

	req := signedIdentityRequest(t, signed, time.Now())
	tampered := []byte(`{"type":"user.deleted","data":{"id":"user_2"}}`)
	req.Body = httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(tampered)).Body
	req.ContentLength = int64(len(tampered))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, userSvc.identityBodies)
}

func TestIdentityWebhook_RejectsMissingHeaders(t *testing.T) {
	router, _, userSvc := newWebhookRouter(t)
	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/identity", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, userSvc.identityBodies)
}

func paymentWebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestPaymentWebhook_AcceptsValidSignature(t *testing.T) {
	router, paymentSvc, _ := newWebhookRouter(t)
	body := []byte(`{"eventType":"PAYMENT_STATUS_CHANGED","data":{"orderId":"user_1_1700000000","status":"DONE"}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set("toss-signature", paymentWebhookSignature(paymentWebhookSecret, body))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, paymentSvc.webhookBodies, 1)
	assert.Equal(t, body, paymentSvc.webhookBodies[0])
}

func TestPaymentWebhook_RejectsBadSignature(t *testing.T) {
	router, paymentSvc, _ := newWebhookRouter(t)
	body := []byte(`{"eventType":"PAYMENT_STATUS_CHANGED"}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(body))
	req.Header.Set("toss-signature", paymentWebhookSignature("wrong_secret", body))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, paymentSvc.webhookBodies)
}
