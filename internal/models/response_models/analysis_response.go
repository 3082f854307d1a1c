package response_models

import (
	"gorm.io/datatypes"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
)

type CreatedAnalysis struct {
	ID           string         `json:"id"`
	AnalysisType string         `json:"analysisType"`
	AIModel      string         `json:"aiModel"`
	ResultText   string         `json:"resultText"`
	ResultJSON   datatypes.JSON `json:"resultJson"`
	CreatedAt    int64          `json:"createdAt"`

	// TestsRemaining is present only for free-plan callers.
	TestsRemaining *int `json:"testsRemaining,omitempty"`
}

type AnalysisDetail struct {
	ID             string         `json:"id"`
	Input          datatypes.JSON `json:"input"`
	OutputMarkdown string         `json:"output_markdown"`
	OutputJSON     datatypes.JSON `json:"output_json"`
	Model          string         `json:"model"`
	Type           string         `json:"type"`
	CreatedAt      int64          `json:"created_at"`
}

type AnalysisDetailWithUser struct {
	Analysis AnalysisDetail `json:"analysis"`
	User     CallerQuota    `json:"user"`
}

type CallerQuota struct {
	Plan           db_models.PlanType `json:"plan"`
	TestsRemaining int                `json:"testsRemaining"`
}

type AnalysisSummary struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Input     datatypes.JSON `json:"input"`
	CreatedAt int64          `json:"created_at"`
}

type AnalysisHistory struct {
	Analyses    []AnalysisSummary `json:"analyses"`
	TodayReport *AnalysisSummary  `json:"todayReport"`
}
