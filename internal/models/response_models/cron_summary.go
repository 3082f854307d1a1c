package response_models

// CronSummary aggregates a scheduled run; one user's failure never
// aborts the batch, it only lands here.
type CronSummary struct {
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Skipped int          `json:"skipped,omitempty"`
	Details []CronDetail `json:"details"`
}

type CronDetail struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Status string `json:"status"` // success | failed | skipped
	Reason string `json:"reason,omitempty"`
	Amount int64  `json:"amount,omitempty"`

	NextBillingDate string `json:"nextBillingDate,omitempty"`
}
