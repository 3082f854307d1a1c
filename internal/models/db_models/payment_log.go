package db_models

type PaymentStatus string

const (
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// PaymentLog is an append-only ledger row, one per billing attempt.
// The (order_id, status) unique index makes at-least-once webhook
// redelivery converge instead of duplicating rows.
type PaymentLog struct {
	BaseModel
	UserID string `gorm:"size:255;index"`

	OrderID string        `gorm:"size:128;uniqueIndex:idx_payment_logs_order_status"`
	Amount  int64         `gorm:"not null"`
	Status  PaymentStatus `gorm:"size:16;index;uniqueIndex:idx_payment_logs_order_status"`

	BillingKey *string
	PaymentKey *string
	ApprovedAt *int64

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
