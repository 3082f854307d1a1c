package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/internal/models/request_models"
	"github.com/jangguenhee/vmc-saju/internal/models/response_models"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/pkg/aiclient"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

type AnalysisService interface {
	CreateAnalysis(ctx context.Context, userID string, req request_models.CreateAnalysisRequest) (*response_models.CreatedAnalysis, error)
	GetAnalysis(ctx context.Context, userID, analysisID string) (*response_models.AnalysisDetailWithUser, error)
	History(ctx context.Context, userID string) (*response_models.AnalysisHistory, error)
}

type analysisService struct {
	userRepo     repositories.UserRepository
	analysisRepo repositories.AnalysisRepository
	entitlement  EntitlementService
	ai           aiclient.Client
	retry        aiclient.RetryConfig
}

func NewAnalysisService(
	userRepo repositories.UserRepository,
	analysisRepo repositories.AnalysisRepository,
	entitlement EntitlementService,
	ai aiclient.Client,
	retry aiclient.RetryConfig,
) AnalysisService {
	return &analysisService{
		userRepo:     userRepo,
		analysisRepo: analysisRepo,
		entitlement:  entitlement,
		ai:           ai,
		retry:        retry,
	}
}

func validateBirthInput(req request_models.CreateAnalysisRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", utils.ErrValidation)
	}
	if _, err := time.Parse(utils.DateLayout, req.BirthDate); err != nil {
		return fmt.Errorf("%w: birthDate must be YYYY-MM-DD", utils.ErrValidation)
	}
	if req.Gender != "male" && req.Gender != "female" {
		return fmt.Errorf("%w: gender must be male or female", utils.ErrValidation)
	}
	return nil
}

func (s *analysisService) CreateAnalysis(ctx context.Context, userID string, req request_models.CreateAnalysisRequest) (*response_models.CreatedAnalysis, error) {
	if err := validateBirthInput(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil {
		return nil, utils.ErrNotFound
	}

	today := utils.Today()

	analysisType, err := s.entitlement.CanCreateAnalysis(ctx, user, today)
	if err != nil {
		return nil, err
	}

	reportType := aiclient.ReportInitial
	if analysisType == db_models.AnalysisDaily {
		reportType = aiclient.ReportDaily
	}

	started := time.Now()
	result, err := aiclient.GenerateWithRetry(ctx, s.ai, aiclient.Options{
		Name:      req.Name,
		BirthDate: req.BirthDate,
		BirthTime: req.BirthTime,
		Gender:    req.Gender,
		Type:      reportType,
		Today:     today,
	}, s.retry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrAIGenerationFailed, err)
	}

	if !aiclient.ValidateReportJSON(result.JSON, reportType) {
		return nil, fmt.Errorf("%w: structured block missing required fields", utils.ErrAIValidationFailed)
	}

	analysis := &db_models.Analysis{
		UserID: user.ID,
		Input: db_models.BirthInput{
			Name:      req.Name,
			BirthDate: req.BirthDate,
			BirthTime: req.BirthTime,
			Gender:    req.Gender,
		}.JSON(),
		OutputMarkdown: aiclient.Sanitize(result.Markdown),
		OutputJSON:     mustJSON(result.JSON),
		Model:          s.ai.ModelName(reportType),
		Type:           analysisType,
	}
	if err := s.analysisRepo.Insert(ctx, analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	resp := &response_models.CreatedAnalysis{
		ID:           analysis.ID.String(),
		AnalysisType: string(analysis.Type),
		AIModel:      analysis.Model,
		ResultText:   analysis.OutputMarkdown,
		ResultJSON:   analysis.OutputJSON,
		CreatedAt:    analysis.CreatedAt,
	}

	// Entitlement mutation happens after persistence; a failure here is
	// logged, never rolled back — the generated reading is kept.
	switch analysisType {
	case db_models.AnalysisFree:
		remaining := user.TestsRemaining - 1
		if remaining < 0 {
			remaining = 0
		}
		ok, err := s.userRepo.DecrementTestsRemaining(ctx, user.ID)
		if err != nil {
			logrus.Errorf("failed to decrement trial credit for user %s: %v", user.ID, err)
		} else if !ok {
			// The conditional decrement found no credit left, so the count
			// read before generation is stale. Report the stored value.
			logrus.Warnf("trial credit for user %s was already exhausted at decrement time", user.ID)
			remaining = 0
			if fresh, ferr := s.userRepo.FindByID(ctx, user.ID); ferr == nil && fresh != nil {
				remaining = fresh.TestsRemaining
			}
		}
		resp.TestsRemaining = &remaining
	case db_models.AnalysisDaily:
		if _, err := s.userRepo.MarkDailyReportSent(ctx, user.ID, today); err != nil {
			logrus.Errorf("failed to update last report date for user %s: %v", user.ID, err)
		}
	}

	logrus.Infof("analysis %s created for user %s in %s", analysis.ID, user.ID, time.Since(started))
	return resp, nil
}

func (s *analysisService) GetAnalysis(ctx context.Context, userID, analysisID string) (*response_models.AnalysisDetailWithUser, error) {
	analysis, err := s.analysisRepo.FindByID(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if analysis == nil {
		return nil, utils.ErrNotFound
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user == nil || analysis.UserID != user.ID {
		return nil, utils.ErrForbidden
	}

	return &response_models.AnalysisDetailWithUser{
		Analysis: response_models.AnalysisDetail{
			ID:             analysis.ID.String(),
			Input:          analysis.Input,
			OutputMarkdown: analysis.OutputMarkdown,
			OutputJSON:     analysis.OutputJSON,
			Model:          analysis.Model,
			Type:           string(analysis.Type),
			CreatedAt:      analysis.CreatedAt,
		},
		User: response_models.CallerQuota{
			Plan:           user.Plan,
			TestsRemaining: user.TestsRemaining,
		},
	}, nil
}

func (s *analysisService) History(ctx context.Context, userID string) (*response_models.AnalysisHistory, error) {
	analyses, err := s.analysisRepo.ListRecentByUser(ctx, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	start, end, err := utils.DayBounds(utils.Today())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	history := &response_models.AnalysisHistory{Analyses: make([]response_models.AnalysisSummary, 0, len(analyses))}
	for _, a := range analyses {
		summary := response_models.AnalysisSummary{
			ID:        a.ID.String(),
			Type:      string(a.Type),
			Input:     a.Input,
			CreatedAt: a.CreatedAt,
		}
		history.Analyses = append(history.Analyses, summary)

		if history.TodayReport == nil && a.Type == db_models.AnalysisDaily &&
			a.CreatedAt >= start && a.CreatedAt < end {
			report := summary
			history.TodayReport = &report
		}
	}
	return history, nil
}
