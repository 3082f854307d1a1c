package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/internal/models/response_models"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/pkg/tosspay"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

const maskedBillingKey = "********"

type SubscriptionService interface {
	Status(ctx context.Context, userID string) (*response_models.SubscriptionStatus, error)

	// Cancel turns off renewal. Paid access continues until the next
	// billing date, which is returned as the subscription end date.
	Cancel(ctx context.Context, userID string) (*response_models.CancelSubscription, error)
}

type subscriptionService struct {
	userRepo repositories.UserRepository
	toss     tosspay.Client
}

func NewSubscriptionService(userRepo repositories.UserRepository, toss tosspay.Client) SubscriptionService {
	return &subscriptionService{userRepo: userRepo, toss: toss}
}

func (s *subscriptionService) Status(ctx context.Context, userID string) (*response_models.SubscriptionStatus, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil {
		return nil, utils.ErrNotFound
	}

	status := &response_models.SubscriptionStatus{
		Plan:                user.Plan,
		TestsRemaining:      user.TestsRemaining,
		NextBillingDate:     user.NextBillingDate,
		LastDailyReportDate: user.LastDailyReportDate,
	}
	// The raw billing key never leaves the server.
	if user.BillingKey != nil {
		masked := maskedBillingKey
		status.BillingKey = &masked
	}
	return status, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID string) (*response_models.CancelSubscription, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil {
		return nil, utils.ErrNotFound
	}
	if user.Plan != db_models.PlanPaid || user.BillingKey == nil {
		return nil, utils.ErrNoActiveSubscription
	}

	// Best effort: the local cancellation goes through even when the
	// processor refuses to release the key.
	if err := s.toss.DeleteBillingKey(ctx, *user.BillingKey, user.ID); err != nil {
		logrus.Warnf("cancel: billing key release failed for user %s: %v", user.ID, err)
	}

	if err := s.userRepo.CancelSubscription(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	endDate := ""
	if user.NextBillingDate != nil {
		endDate = *user.NextBillingDate
	}
	logrus.Infof("subscription cancelled for user %s, access until %s", user.ID, endDate)
	return &response_models.CancelSubscription{SubscriptionEndDate: endDate}, nil
}
