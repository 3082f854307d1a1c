package response_models

import "github.com/jangguenhee/vmc-saju/internal/models/db_models"

type SubscriptionStatus struct {
	Plan                db_models.PlanType `json:"plan"`
	TestsRemaining      int                `json:"testsRemaining"`
	BillingKey          *string            `json:"billingKey"`
	NextBillingDate     *string            `json:"nextBillingDate"`
	LastDailyReportDate *string            `json:"lastDailyReportDate"`
}

type CancelSubscription struct {
	// SubscriptionEndDate is the already-paid-for next billing date;
	// access runs until then. Empty when no date was on file.
	SubscriptionEndDate string `json:"subscriptionEndDate"`
}
