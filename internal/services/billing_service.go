package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/internal/models/response_models"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/pkg/tosspay"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

const monthlyOrderName = "365일 사주 월 구독"

type BillingService interface {
	// RunBillingCycle charges every paid user whose next_billing_date
	// equals today. Users are processed independently; one failure
	// never aborts the batch.
	RunBillingCycle(ctx context.Context, today string) (*response_models.CronSummary, error)
}

type billingService struct {
	userRepo    repositories.UserRepository
	paymentRepo repositories.PaymentLogRepository
	toss        tosspay.Client
	amount      int64
}

func NewBillingService(
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentLogRepository,
	toss tosspay.Client,
	amount int64,
) BillingService {
	return &billingService{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		toss:        toss,
		amount:      amount,
	}
}

func (s *billingService) RunBillingCycle(ctx context.Context, today string) (*response_models.CronSummary, error) {
	users, err := s.userRepo.ListDueForBilling(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	summary := &response_models.CronSummary{Total: len(users), Details: []response_models.CronDetail{}}
	if len(users) == 0 {
		logrus.Info("billing cycle: no users due today")
		return summary, nil
	}

	logrus.Infof("billing cycle: processing %d users", len(users))

	for i := range users {
		detail := s.chargeUser(ctx, &users[i], today)
		switch detail.Status {
		case "success":
			summary.Success++
		case "skipped":
			summary.Skipped++
		default:
			summary.Failed++
		}
		summary.Details = append(summary.Details, detail)
	}

	logrus.Infof("billing cycle complete: %d success, %d failed, %d skipped",
		summary.Success, summary.Failed, summary.Skipped)
	return summary, nil
}

func (s *billingService) chargeUser(ctx context.Context, user *db_models.User, today string) response_models.CronDetail {
	detail := response_models.CronDetail{UserID: user.ID, Email: user.Email, Amount: s.amount}

	next, err := utils.AddMonthClamped(today)
	if err != nil {
		detail.Status = "failed"
		detail.Reason = "bad_billing_date"
		return detail
	}

	// Claim the due date first. If another run already advanced it, the
	// user was billed and this pass skips them — the claim is what makes
	// a crashed batch safe to re-run without double charging.
	claimed, err := s.userRepo.AdvanceBillingDate(ctx, user.ID, today, next)
	if err != nil {
		detail.Status = "failed"
		detail.Reason = "db_error"
		logrus.Errorf("billing: claim failed for user %s: %v", user.ID, err)
		return detail
	}
	if !claimed {
		detail.Status = "skipped"
		detail.Reason = "already_billed"
		logrus.Warnf("billing: user %s already advanced past %s, skipping", user.ID, today)
		return detail
	}

	orderID := fmt.Sprintf("billing_%s_%d", user.ID, time.Now().UnixMilli())
	payment, err := s.toss.ChargeWithBillingKey(ctx, *user.BillingKey, user.ID, s.amount, orderID, monthlyOrderName)
	if err != nil {
		logrus.Errorf("billing: charge failed for user %s: %v", user.ID, err)

		// Failed charges leave next_billing_date untouched so a manual
		// retry can reuse the same due date; release the claim.
		if released, rerr := s.userRepo.AdvanceBillingDate(ctx, user.ID, next, today); rerr != nil || !released {
			logrus.Errorf("billing: failed to restore due date for user %s: %v", user.ID, rerr)
		}
		if serr := s.userRepo.Suspend(ctx, user.ID); serr != nil {
			logrus.Errorf("billing: suspend failed for user %s: %v", user.ID, serr)
		}
		if _, lerr := s.paymentRepo.Insert(ctx, &db_models.PaymentLog{
			UserID:     user.ID,
			OrderID:    orderID,
			Amount:     s.amount,
			Status:     db_models.PaymentFailed,
			BillingKey: user.BillingKey,
		}); lerr != nil {
			logrus.Errorf("billing: payment log failed for user %s: %v", user.ID, lerr)
		}

		detail.Status = "failed"
		detail.Reason = "charge_failed"
		return detail
	}

	approvedAt := time.Now().Unix()
	if _, err := s.paymentRepo.Insert(ctx, &db_models.PaymentLog{
		UserID:     user.ID,
		OrderID:    orderID,
		Amount:     s.amount,
		Status:     db_models.PaymentSuccess,
		BillingKey: user.BillingKey,
		PaymentKey: &payment.PaymentKey,
		ApprovedAt: &approvedAt,
	}); err != nil {
		logrus.Errorf("billing: payment log failed for user %s: %v", user.ID, err)
	}

	logrus.Infof("billing: charged user %s (%d), next due %s", user.ID, s.amount, next)
	detail.Status = "success"
	detail.NextBillingDate = next
	return detail
}
