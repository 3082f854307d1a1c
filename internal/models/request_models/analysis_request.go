package request_models

type CreateAnalysisRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"`
	BirthTime string `json:"birthTime,omitempty"`
	Gender    string `json:"gender"`
}
