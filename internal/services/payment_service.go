package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/pkg/tosspay"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

// PaymentEvent is the closed set of webhook payload variants. Payloads
// are decoded into exactly one of these right after signature
// verification; anything unrecognized becomes UnhandledPaymentEvent.
type PaymentEvent interface{ isPaymentEvent() }

type PaymentStatusChangedEvent struct {
	OrderID     string
	Status      string
	PaymentKey  string
	BillingKey  string
	TotalAmount int64
}

type BillingKeyDeletedEvent struct {
	CustomerKey string
}

type UnhandledPaymentEvent struct {
	EventType string
}

func (PaymentStatusChangedEvent) isPaymentEvent() {}
func (BillingKeyDeletedEvent) isPaymentEvent()    {}
func (UnhandledPaymentEvent) isPaymentEvent()     {}

// DecodePaymentEvent parses a verified webhook body into a tagged
// variant. Unknown event types are not an error.
func DecodePaymentEvent(raw []byte) (PaymentEvent, error) {
	var envelope struct {
		EventType string          `json:"eventType"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}

	switch envelope.EventType {
	case "PAYMENT_STATUS_CHANGED":
		var data struct {
			OrderID     string `json:"orderId"`
			Status      string `json:"status"`
			PaymentKey  string `json:"paymentKey"`
			BillingKey  string `json:"billingKey"`
			TotalAmount int64  `json:"totalAmount"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("malformed payment status payload: %w", err)
		}
		return PaymentStatusChangedEvent{
			OrderID:     data.OrderID,
			Status:      data.Status,
			PaymentKey:  data.PaymentKey,
			BillingKey:  data.BillingKey,
			TotalAmount: data.TotalAmount,
		}, nil

	case "BILLING_KEY_DELETED":
		var data struct {
			CustomerKey string `json:"customerKey"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("malformed billing key payload: %w", err)
		}
		return BillingKeyDeletedEvent{CustomerKey: data.CustomerKey}, nil

	default:
		return UnhandledPaymentEvent{EventType: envelope.EventType}, nil
	}
}

type PaymentService interface {
	// ConfirmCheckout finishes the hosted-checkout redirect: approves
	// the payment with the processor and activates the subscription.
	ConfirmCheckout(ctx context.Context, userID, paymentKey, orderID string, amount int64) error

	// RecordCheckoutFailure appends a failed ledger row for the
	// fail-redirect path. Best effort.
	RecordCheckoutFailure(ctx context.Context, userID, orderID string)

	// ProcessWebhook dispatches a signature-verified raw webhook body.
	ProcessWebhook(ctx context.Context, raw []byte) error
}

type paymentService struct {
	userRepo    repositories.UserRepository
	paymentRepo repositories.PaymentLogRepository
	toss        tosspay.Client
}

func NewPaymentService(
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentLogRepository,
	toss tosspay.Client,
) PaymentService {
	return &paymentService{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		toss:        toss,
	}
}

func (s *paymentService) ConfirmCheckout(ctx context.Context, userID, paymentKey, orderID string, amount int64) error {
	payment, err := s.toss.ApprovePayment(ctx, paymentKey, orderID, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrPaymentFailed, err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil {
		return utils.ErrNotFound
	}

	next, err := utils.AddMonthClamped(utils.Today())
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	var billingKey *string
	if payment.BillingKey != "" {
		billingKey = &payment.BillingKey
	}
	if err := s.userRepo.ActivatePaid(ctx, user.ID, billingKey, next); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	approvedAt := time.Now().Unix()
	inserted, err := s.paymentRepo.Insert(ctx, &db_models.PaymentLog{
		UserID:     user.ID,
		OrderID:    orderID,
		Amount:     amount,
		Status:     db_models.PaymentSuccess,
		BillingKey: billingKey,
		PaymentKey: &paymentKey,
		ApprovedAt: &approvedAt,
	})
	if err != nil {
		logrus.Errorf("checkout: payment log failed for user %s: %v", user.ID, err)
	} else if !inserted {
		logrus.Warnf("checkout: order %s already logged, skipping", orderID)
	}

	logrus.Infof("checkout: user %s subscribed, next billing %s", user.ID, next)
	return nil
}

func (s *paymentService) RecordCheckoutFailure(ctx context.Context, userID, orderID string) {
	if orderID == "" {
		return
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	// Amount is unknown at this point.
	if _, err := s.paymentRepo.Insert(ctx, &db_models.PaymentLog{
		UserID:  user.ID,
		OrderID: orderID,
		Amount:  0,
		Status:  db_models.PaymentFailed,
	}); err != nil {
		logrus.Errorf("checkout: failure log failed for user %s: %v", user.ID, err)
	}
}

func (s *paymentService) ProcessWebhook(ctx context.Context, raw []byte) error {
	event, err := DecodePaymentEvent(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	switch e := event.(type) {
	case PaymentStatusChangedEvent:
		return s.applyStatusChange(ctx, e)
	case BillingKeyDeletedEvent:
		logrus.Infof("webhook: billing key deleted for user %s", e.CustomerKey)
		if err := s.userRepo.CancelSubscription(ctx, e.CustomerKey); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		return nil
	case UnhandledPaymentEvent:
		logrus.Infof("webhook: unhandled event type %q", e.EventType)
		return nil
	default:
		return nil
	}
}

// applyStatusChange keys the affected user off the order id prefix
// before the first separator (checkout orders are "<userID>_<ts>").
func (s *paymentService) applyStatusChange(ctx context.Context, e PaymentStatusChangedEvent) error {
	userID, _, _ := strings.Cut(e.OrderID, "_")
	if userID == "" {
		logrus.Warnf("webhook: order %q has no user prefix, ignoring", e.OrderID)
		return nil
	}

	switch e.Status {
	case "DONE":
		next, err := utils.AddMonthClamped(utils.Today())
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		var billingKey *string
		if e.BillingKey != "" {
			billingKey = &e.BillingKey
		}
		if err := s.userRepo.ActivatePaid(ctx, userID, billingKey, next); err != nil {
			logrus.Errorf("webhook: activation failed for user %s: %v", userID, err)
		}
		approvedAt := time.Now().Unix()
		inserted, err := s.paymentRepo.Insert(ctx, &db_models.PaymentLog{
			UserID:     userID,
			OrderID:    e.OrderID,
			Amount:     e.TotalAmount,
			Status:     db_models.PaymentSuccess,
			BillingKey: billingKey,
			PaymentKey: &e.PaymentKey,
			ApprovedAt: &approvedAt,
		})
		if err != nil {
			logrus.Errorf("webhook: payment log failed for order %s: %v", e.OrderID, err)
		} else if !inserted {
			logrus.Warnf("webhook: order %s already processed", e.OrderID)
		}
		logrus.Infof("webhook: payment done for user %s", userID)

	case "CANCELED":
		if _, err := s.paymentRepo.Insert(ctx, &db_models.PaymentLog{
			UserID:     userID,
			OrderID:    e.OrderID,
			Amount:     e.TotalAmount,
			Status:     db_models.PaymentCancelled,
			PaymentKey: &e.PaymentKey,
		}); err != nil {
			logrus.Errorf("webhook: cancel log failed for order %s: %v", e.OrderID, err)
		}
		logrus.Infof("webhook: payment cancelled for user %s", userID)

	case "FAILED":
		if _, err := s.paymentRepo.Insert(ctx, &db_models.PaymentLog{
			UserID:     userID,
			OrderID:    e.OrderID,
			Amount:     e.TotalAmount,
			Status:     db_models.PaymentFailed,
			PaymentKey: &e.PaymentKey,
		}); err != nil {
			logrus.Errorf("webhook: failure log failed for order %s: %v", e.OrderID, err)
		}
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if user != nil && user.Plan == db_models.PlanPaid {
			if err := s.userRepo.Suspend(ctx, userID); err != nil {
				logrus.Errorf("webhook: suspend failed for user %s: %v", userID, err)
			}
		}
		logrus.Warnf("webhook: payment failed for user %s", userID)

	default:
		logrus.Infof("webhook: unhandled payment status %q for order %s", e.Status, e.OrderID)
	}

	return nil
}
