package ports

import (
	"context"
	"io"

	"github.com/legalease-app/backend/internal/core/domain"
)

// Registrar is the inbound contract for account creation.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
}

// Authenticator is the inbound contract for login and token refresh.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// ContractUploader is the inbound contract for upload orchestration.
type ContractUploader interface {
	Upload(ctx context.Context, ownerID string, req UploadRequest) (*domain.Contract, error)
}

// UploadRequest bundles the multipart form fields of an upload.
type UploadRequest struct {
	Title       string
	Description string
	FileName    string
	FileSize    int64
	Body        io.Reader
}

// ContractService is the inbound contract for owner-scoped CRUD.
type ContractService interface {
	List(ctx context.Context, ownerID string) ([]domain.ContractSummary, error)
	Get(ctx context.Context, ownerID, contractID string) (*domain.Contract, error)
	Update(ctx context.Context, ownerID, contractID string, title, description *string) (*domain.Contract, error)
	Delete(ctx context.Context, ownerID, contractID string) error
	MarkAnalyzed(ctx context.Context, ownerID, contractID string) (*domain.Contract, error)
}

// ContractProcessor is the inbound contract for asynchronous analysis.
type ContractProcessor interface {
	ProcessByID(ctx context.Context, contractID string) error
}
