package db_models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type AnalysisType string

const (
	AnalysisFree  AnalysisType = "free"
	AnalysisDaily AnalysisType = "daily"
)

// BirthInput is the JSON shape stored in Analysis.Input.
type BirthInput struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
	BirthTime string `json:"birthTime,omitempty"`
	Gender    string `json:"gender"`

	// ReportDate tags cron-generated daily reports with the date they
	// were produced for.
	ReportDate string `json:"reportDate,omitempty"`
}

func (b BirthInput) JSON() datatypes.JSON {
	raw, _ := json.Marshal(b)
	return raw
}

// Analysis is one generated reading. Immutable once created.
type Analysis struct {
	BaseModel
	UserID string `gorm:"size:255;index"`

	Input          datatypes.JSON `gorm:"type:jsonb"`
	OutputMarkdown string         `gorm:"type:text"`
	OutputJSON     datatypes.JSON `gorm:"type:jsonb"`

	Model string       `gorm:"size:64"`
	Type  AnalysisType `gorm:"size:16;index"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (a *Analysis) ParseInput() (BirthInput, error) {
	var input BirthInput
	err := json.Unmarshal(a.Input, &input)
	return input, err
}
