package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/internal/models/response_models"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/pkg/aiclient"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

type ReportService interface {
	// RunDailyReports regenerates a daily reading for every paid user
	// who has not yet received today's report.
	RunDailyReports(ctx context.Context, today string) (*response_models.CronSummary, error)
}

type reportService struct {
	userRepo     repositories.UserRepository
	analysisRepo repositories.AnalysisRepository
	ai           aiclient.Client
	retry        aiclient.RetryConfig
}

func NewReportService(
	userRepo repositories.UserRepository,
	analysisRepo repositories.AnalysisRepository,
	ai aiclient.Client,
	retry aiclient.RetryConfig,
) ReportService {
	return &reportService{
		userRepo:     userRepo,
		analysisRepo: analysisRepo,
		ai:           ai,
		retry:        retry,
	}
}

func (s *reportService) RunDailyReports(ctx context.Context, today string) (*response_models.CronSummary, error) {
	users, err := s.userRepo.ListDueForDailyReport(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	summary := &response_models.CronSummary{Total: len(users), Details: []response_models.CronDetail{}}
	if len(users) == 0 {
		logrus.Info("daily report: no users due today")
		return summary, nil
	}

	logrus.Infof("daily report: processing %d users", len(users))

	for i := range users {
		detail := s.generateFor(ctx, &users[i], today)
		switch detail.Status {
		case "success":
			summary.Success++
		case "skipped":
			summary.Skipped++
		default:
			summary.Failed++
		}
		summary.Details = append(summary.Details, detail)
	}

	logrus.Infof("daily report complete: %d success, %d failed, %d skipped",
		summary.Success, summary.Failed, summary.Skipped)
	return summary, nil
}

func (s *reportService) generateFor(ctx context.Context, user *db_models.User, today string) response_models.CronDetail {
	detail := response_models.CronDetail{UserID: user.ID, Email: user.Email}

	// Birth input is recovered from the most recent analysis. A paid
	// user with no analyses at all cannot receive a report.
	latest, err := s.analysisRepo.LatestByUser(ctx, user.ID)
	if err != nil {
		detail.Status = "failed"
		detail.Reason = "db_error"
		logrus.Errorf("daily report: lookup failed for user %s: %v", user.ID, err)
		return detail
	}
	if latest == nil {
		detail.Status = "skipped"
		detail.Reason = "no_analysis"
		logrus.Warnf("daily report: user %s has no analysis, skipping", user.ID)
		return detail
	}

	input, err := latest.ParseInput()
	if err != nil || input.Name == "" {
		detail.Status = "skipped"
		detail.Reason = "no_analysis"
		logrus.Warnf("daily report: user %s has unusable birth input, skipping", user.ID)
		return detail
	}

	result, err := aiclient.GenerateWithRetry(ctx, s.ai, aiclient.Options{
		Name:      input.Name,
		BirthDate: input.BirthDate,
		BirthTime: input.BirthTime,
		Gender:    input.Gender,
		Type:      aiclient.ReportDaily,
		Today:     today,
	}, s.retry)
	if err != nil {
		detail.Status = "failed"
		detail.Reason = "ai_error"
		logrus.Errorf("daily report: generation failed for user %s: %v", user.ID, err)
		return detail
	}
	if result.Markdown == "" || !aiclient.ValidateReportJSON(result.JSON, aiclient.ReportDaily) {
		detail.Status = "failed"
		detail.Reason = "ai_error"
		logrus.Errorf("daily report: invalid generation result for user %s", user.ID)
		return detail
	}

	input.ReportDate = today
	analysis := &db_models.Analysis{
		UserID:         user.ID,
		Input:          input.JSON(),
		OutputMarkdown: aiclient.Sanitize(result.Markdown),
		OutputJSON:     mustJSON(result.JSON),
		Model:          s.ai.ModelName(aiclient.ReportDaily),
		Type:           db_models.AnalysisDaily,
	}
	if err := s.analysisRepo.Insert(ctx, analysis); err != nil {
		detail.Status = "failed"
		detail.Reason = "db_error"
		logrus.Errorf("daily report: insert failed for user %s: %v", user.ID, err)
		return detail
	}

	// Conditional advance; an update failure is logged, not retried
	// within this run.
	if ok, err := s.userRepo.MarkDailyReportSent(ctx, user.ID, today); err != nil {
		logrus.Errorf("daily report: date update failed for user %s: %v", user.ID, err)
	} else if !ok {
		logrus.Warnf("daily report: date for user %s already at %s", user.ID, today)
	}

	detail.Status = "success"
	return detail
}
