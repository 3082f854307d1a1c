package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
)

type PaymentLogRepository interface {
	// Insert appends a ledger row. A duplicate (order id, status) pair
	// means the same logical event was delivered again; it reports
	// inserted=false and no error.
	Insert(ctx context.Context, log *db_models.PaymentLog) (bool, error)

	ListByUser(ctx context.Context, userID string, limit int) ([]db_models.PaymentLog, error)
}

type paymentLogRepository struct {
	db *gorm.DB
}

func NewPaymentLogRepository(db *gorm.DB) PaymentLogRepository {
	return &paymentLogRepository{db: db}
}

func (r *paymentLogRepository) Insert(ctx context.Context, log *db_models.PaymentLog) (bool, error) {
	err := r.db.WithContext(ctx).Create(log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *paymentLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]db_models.PaymentLog, error) {
	var logs []db_models.PaymentLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
