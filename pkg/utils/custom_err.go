package utils

import "errors"

var (
	ErrValidation           = errors.New("validation error")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrFreeTrialExhausted   = errors.New("free trial exhausted")
	ErrDailyLimitReached    = errors.New("daily limit reached")
	ErrNotEntitled          = errors.New("not entitled")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrAIGenerationFailed   = errors.New("ai generation failed")
	ErrAIValidationFailed   = errors.New("ai validation failed")
	ErrDatabaseError        = errors.New("database error")
)
