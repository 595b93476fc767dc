package domain

import "time"

type ContractStatus string

const (
	StatusUploaded   ContractStatus = "uploaded"
	StatusProcessing ContractStatus = "processing"
	StatusAnalyzed   ContractStatus = "analyzed"
	StatusError      ContractStatus = "error"
)

// IsTerminal reports whether the pipeline may no longer change the status.
func (s ContractStatus) IsTerminal() bool {
	return s == StatusAnalyzed || s == StatusError
}

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
)

type Contract struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"owner_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	FileName    string         `json:"file_name"`
	FileSize    int64          `json:"file_size"`
	FileType    FileType       `json:"file_type"`
	StoragePath string         `json:"-"`
	Status      ContractStatus `json:"status"`
	Error       string         `json:"error,omitempty"`

	ExtractedText    string            `json:"extracted_text,omitempty"`
	AnalysisSummary  string            `json:"analysis_summary,omitempty"`
	ExtractedClauses []ClauseGroup     `json:"extracted_clauses"`
	RiskAssessment   *RiskAssessment   `json:"risk_assessment,omitempty"`
	Metadata         *AnalysisMetadata `json:"analysis_metadata,omitempty"`

	UploadedAt time.Time  `json:"uploaded_at"`
	AnalyzedAt *time.Time `json:"analyzed_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ContractSummary is the lightweight list view returned by the collection
// endpoint; full payloads (text, clauses, risks) stay on the detail view.
type ContractSummary struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	FileType    FileType       `json:"file_type"`
	FileSize    int64          `json:"file_size"`
	Status      ContractStatus `json:"status"`
	UploadedAt  time.Time      `json:"uploaded_at"`
	AnalyzedAt  *time.Time     `json:"analyzed_at,omitempty"`
}

func (c *Contract) Summary() ContractSummary {
	return ContractSummary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		FileType:    c.FileType,
		FileSize:    c.FileSize,
		Status:      c.Status,
		UploadedAt:  c.UploadedAt,
		AnalyzedAt:  c.AnalyzedAt,
	}
}

// AnalysisResult bundles everything the pipeline persists when a contract
// reaches the analyzed state.
type AnalysisResult struct {
	Clauses    []ClauseGroup
	Risk       *RiskAssessment
	Summary    string
	Metadata   AnalysisMetadata
	AnalyzedAt time.Time
}

// AnalysisMetadata captures how the last analysis run went.
type AnalysisMetadata struct {
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	ClauseTypesFound      int     `json:"clause_types_found"`
	TotalClauses          int     `json:"total_clauses"`
	OverallRiskLevel      string  `json:"overall_risk_level"`
}
