package ports

import (
	"context"
	"io"
	"time"

	"github.com/legalease-app/backend/internal/core/domain"
)

// ContractRepository persists and reads contract state.
type ContractRepository interface {
	Create(ctx context.Context, c *domain.Contract) error
	GetByID(ctx context.Context, id string) (*domain.Contract, error)
	GetByOwner(ctx context.Context, ownerID, id string) (*domain.Contract, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.ContractSummary, error)
	UpdateDetails(ctx context.Context, ownerID, id string, title, description *string) error
	Delete(ctx context.Context, ownerID, id string) error

	// Pipeline writes. UpdateStatus must refuse to rewind a terminal status.
	UpdateStatus(ctx context.Context, id string, status domain.ContractStatus, errMessage string) error
	SaveExtractedText(ctx context.Context, id string, text string) error
	SaveClauses(ctx context.Context, id string, groups []domain.ClauseGroup) error
	SaveAnalysis(ctx context.Context, id string, result domain.AnalysisResult) error
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// ObjectStorage stores uploaded contract files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishContractUploaded(ctx context.Context, contractID string) error
	SubscribeContractUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored contract file.
type TextExtractor interface {
	Extract(ctx context.Context, c *domain.Contract) (string, error)
}

// ClauseExtractor pattern-matches legal provisions in contract text.
type ClauseExtractor interface {
	ExtractClauses(text string) []domain.ClauseGroup
}

// RiskAnalyzer produces the structured risk commentary for a contract.
type RiskAnalyzer interface {
	AnalyzeRisks(ctx context.Context, groups []domain.ClauseGroup, text string) (*domain.RiskAssessment, error)
	GenerateSummary(ctx context.Context, text string, groups []domain.ClauseGroup) (string, error)
}

// ClauseSummarizer rewrites a clause instance as one plain sentence.
// Implementations return an empty string when no focused summary exists.
type ClauseSummarizer interface {
	SummarizeClause(ctx context.Context, clauseText, clauseType, article string) (string, error)
}

// PipelineObserver receives pipeline measurements for metrics export.
// Implementations must be safe for concurrent use.
type PipelineObserver interface {
	QueueLag(lag time.Duration)
	ClausesFound(total int)
	LLMCall(operation string, err error)
}

// TokenManager issues and verifies the JWT pairs used by the API.
type TokenManager interface {
	Issue(user *domain.User) (*domain.TokenPair, error)
	VerifyAccess(token string) (userID string, err error)
	VerifyRefresh(token string) (userID string, err error)
	AccessTTL() time.Duration
}
