package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
)

type AnalysisRepository interface {
	Insert(ctx context.Context, analysis *db_models.Analysis) error
	FindByID(ctx context.Context, id string) (*db_models.Analysis, error)
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]db_models.Analysis, error)
	LatestByUser(ctx context.Context, userID string) (*db_models.Analysis, error)

	// CountDailyInRange counts daily analyses created within the unix
	// second range [start, end) — one calendar day for the guard.
	CountDailyInRange(ctx context.Context, userID string, start, end int64) (int64, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Insert(ctx context.Context, analysis *db_models.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *analysisRepository) FindByID(ctx context.Context, id string) (*db_models.Analysis, error) {
	var analysis db_models.Analysis
	err := r.db.WithContext(ctx).First(&analysis, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]db_models.Analysis, error) {
	var analyses []db_models.Analysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}

func (r *analysisRepository) LatestByUser(ctx context.Context, userID string) (*db_models.Analysis, error) {
	var analysis db_models.Analysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepository) CountDailyInRange(ctx context.Context, userID string, start, end int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db_models.Analysis{}).
		Where("user_id = ? AND type = ? AND created_at >= ? AND created_at < ?",
			userID, db_models.AnalysisDaily, start, end).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
