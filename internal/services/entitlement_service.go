package services

import (
	"context"
	"fmt"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

// EntitlementService decides whether a user may create an analysis and
// which type it will be. Pure decision logic; the caller applies the
// counter mutation after a successful generation so a failed AI call
// never burns credit.
type EntitlementService interface {
	CanCreateAnalysis(ctx context.Context, user *db_models.User, today string) (db_models.AnalysisType, error)
}

type entitlementService struct {
	analysisRepo repositories.AnalysisRepository
}

func NewEntitlementService(analysisRepo repositories.AnalysisRepository) EntitlementService {
	return &entitlementService{analysisRepo: analysisRepo}
}

func (s *entitlementService) CanCreateAnalysis(ctx context.Context, user *db_models.User, today string) (db_models.AnalysisType, error) {
	if user == nil {
		return "", utils.ErrNotEntitled
	}

	switch user.Plan {
	case db_models.PlanFree:
		// The trial counter is the sole gate; the requested type is
		// forced to the initial/free reading.
		if user.TestsRemaining <= 0 {
			return "", utils.ErrFreeTrialExhausted
		}
		return db_models.AnalysisFree, nil

	case db_models.PlanPaid:
		start, end, err := utils.DayBounds(today)
		if err != nil {
			return "", fmt.Errorf("%w: bad date %q", utils.ErrDatabaseError, today)
		}
		count, err := s.analysisRepo.CountDailyInRange(ctx, user.ID, start, end)
		if err != nil {
			return "", fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if count > 0 {
			return "", utils.ErrDailyLimitReached
		}
		return db_models.AnalysisDaily, nil

	default:
		// cancelled, suspended or unknown plans are denied outright.
		return "", utils.ErrNotEntitled
	}
}
