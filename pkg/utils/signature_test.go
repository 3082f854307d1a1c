package utils

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func paymentSignature(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "test_sk_secret"
	body := []byte(`{"eventType":"PAYMENT_STATUS_CHANGED"}`)

	assert.True(t, VerifyPaymentSignature(secret, body, paymentSignature(secret, body)))
	assert.False(t, VerifyPaymentSignature(secret, body, paymentSignature("other", body)))
	assert.False(t, VerifyPaymentSignature(secret, []byte(`tampered`), paymentSignature(secret, body)))
	assert.False(t, VerifyPaymentSignature(secret, body, ""))
}
