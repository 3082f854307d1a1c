package db_models

type PlanType string

const (
	PlanFree      PlanType = "free"
	PlanPaid      PlanType = "paid"
	PlanCancelled PlanType = "cancelled"
	PlanSuspended PlanType = "suspended"
)

// User is keyed by the identity provider's user id. Billing dates are
// stored as YYYY-MM-DD strings in the service's local (KST) calendar.
type User struct {
	ID    string `gorm:"primaryKey;size:255"`
	Email string `gorm:"index"`
	Name  *string

	Plan           PlanType `gorm:"size:16;index;default:'free'"`
	TestsRemaining int      `gorm:"not null;default:0"`

	// BillingKey is present only while a recurring charge method is
	// registered with the payment processor.
	BillingKey          *string
	NextBillingDate     *string `gorm:"size:10;index"`
	LastDailyReportDate *string `gorm:"size:10"`

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`

	Analyses    []Analysis   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PaymentLogs []PaymentLog `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
