package utils

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
)

// VerifyPaymentSignature checks the payment processor's webhook
// signature: HMAC-SHA512 over the exact raw body, base64-encoded.
func VerifyPaymentSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
