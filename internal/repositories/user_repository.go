package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*db_models.User, error)
	Insert(ctx context.Context, user *db_models.User) error
	UpdateProfile(ctx context.Context, id, email string, name *string) error
	Delete(ctx context.Context, id string) error

	// DecrementTestsRemaining is a single conditional update; a false
	// result means the trial credit was already exhausted (or the plan
	// changed) and the caller must treat it as a fresh denial.
	DecrementTestsRemaining(ctx context.Context, id string) (bool, error)

	// MarkDailyReportSent advances last_daily_report_date to today only
	// if it has not already reached it.
	MarkDailyReportSent(ctx context.Context, id, today string) (bool, error)

	// AdvanceBillingDate moves next_billing_date from prev to next only
	// if it still equals prev, so a replayed batch run skips users that
	// were already advanced.
	AdvanceBillingDate(ctx context.Context, id, prev, next string) (bool, error)

	ActivatePaid(ctx context.Context, id string, billingKey *string, nextBillingDate string) error
	Suspend(ctx context.Context, id string) error
	CancelSubscription(ctx context.Context, id string) error

	ListDueForBilling(ctx context.Context, today string) ([]db_models.User, error)
	ListDueForDailyReport(ctx context.Context, today string) ([]db_models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*db_models.User, error) {
	var user db_models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Insert(ctx context.Context, user *db_models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, email string, name *string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"email": email, "name": name}).Error
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	// Hard delete; the FK constraints cascade to analyses and payment logs.
	return r.db.WithContext(ctx).Delete(&db_models.User{}, "id = ?", id).Error
}

func (r *userRepository) DecrementTestsRemaining(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ? AND plan = ? AND tests_remaining > 0", id, db_models.PlanFree).
		UpdateColumn("tests_remaining", gorm.Expr("tests_remaining - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) MarkDailyReportSent(ctx context.Context, id, today string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ? AND plan = ? AND (last_daily_report_date IS NULL OR last_daily_report_date < ?)",
			id, db_models.PlanPaid, today).
		Update("last_daily_report_date", today)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) AdvanceBillingDate(ctx context.Context, id, prev, next string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ? AND next_billing_date = ?", id, prev).
		Update("next_billing_date", next)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *userRepository) ActivatePaid(ctx context.Context, id string, billingKey *string, nextBillingDate string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan":              db_models.PlanPaid,
			"billing_key":       billingKey,
			"next_billing_date": nextBillingDate,
		}).Error
}

func (r *userRepository) Suspend(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Update("plan", db_models.PlanSuspended).Error
}

func (r *userRepository) CancelSubscription(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan":        db_models.PlanCancelled,
			"billing_key": nil,
		}).Error
}

func (r *userRepository) ListDueForBilling(ctx context.Context, today string) ([]db_models.User, error) {
	var users []db_models.User
	err := r.db.WithContext(ctx).
		Where("plan = ? AND billing_key IS NOT NULL AND next_billing_date = ?", db_models.PlanPaid, today).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListDueForDailyReport(ctx context.Context, today string) ([]db_models.User, error) {
	var users []db_models.User
	err := r.db.WithContext(ctx).
		Where("plan = ? AND (last_daily_report_date IS NULL OR last_daily_report_date < ?)", db_models.PlanPaid, today).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
