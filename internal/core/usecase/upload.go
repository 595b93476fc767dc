package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
)

const maxTitleLen = 255

type UploadUseCase struct {
	contracts   ports.ContractRepository
	storage     ports.ObjectStorage
	queue       ports.MessageQueue
	maxFileSize int64
}

func NewUploadUseCase(contracts ports.ContractRepository, storage ports.ObjectStorage, queue ports.MessageQueue, maxFileSize int64) *UploadUseCase {
	return &UploadUseCase{
		contracts:   contracts,
		storage:     storage,
		queue:       queue,
		maxFileSize: maxFileSize,
	}
}

// Upload validates the form fields, stores the file, records the contract
// in the uploaded state and enqueues it for background analysis. Queue
// publish failures do not roll back the contract: the row stays visible
// in the uploaded state and surfaces as a temporary error to the caller.
func (uc *UploadUseCase) Upload(ctx context.Context, ownerID string, req ports.UploadRequest) (*domain.Contract, error) {
	title := strings.TrimSpace(req.Title)
	fileType, verr := validateUpload(title, req, uc.maxFileSize)
	if verr.HasErrors() {
		return nil, verr
	}

	body, err := sniffFileType(req.Body, fileType)
	if err != nil {
		v := domain.NewValidationError()
		v.Add("file", err.Error())
		return nil, v
	}

	id := uuid.NewString()
	storagePath := fmt.Sprintf("%s_%s", id, sanitizeFileName(req.FileName))

	written, err := uc.storage.Save(ctx, storagePath, body)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	now := time.Now().UTC()
	contract := &domain.Contract{
		ID:               id,
		OwnerID:          ownerID,
		Title:            title,
		Description:      strings.TrimSpace(req.Description),
		FileName:         req.FileName,
		FileSize:         written,
		FileType:         fileType,
		StoragePath:      storagePath,
		Status:           domain.StatusUploaded,
		ExtractedClauses: []domain.ClauseGroup{},
		UploadedAt:       now,
		UpdatedAt:        now,
	}
	if err := uc.contracts.Create(ctx, contract); err != nil {
		if rmErr := uc.storage.Remove(ctx, storagePath); rmErr != nil {
			err = errors.Join(err, fmt.Errorf("remove orphaned file: %w", rmErr))
		}
		return nil, fmt.Errorf("create contract: %w", err)
	}

	if err := uc.queue.PublishContractUploaded(ctx, contract.ID); err != nil {
		return contract, domain.WrapError(domain.ErrTemporary, "enqueue analysis", err)
	}
	return contract, nil
}

func validateUpload(title string, req ports.UploadRequest, maxFileSize int64) (domain.FileType, *domain.ValidationError) {
	v := domain.NewValidationError()
	switch {
	case title == "":
		v.Add("title", "title is required")
	case len(title) > maxTitleLen:
		v.Add("title", fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if req.Body == nil || req.FileName == "" {
		v.Add("file", "file is required")
		return "", v
	}
	if req.FileSize > maxFileSize {
		v.Add("file", fmt.Sprintf("file exceeds the %d byte limit", maxFileSize))
	}
	ft, ok := fileTypeFromName(req.FileName)
	if !ok {
		v.Add("file", "only PDF and DOCX files are supported")
	}
	return ft, v
}

func fileTypeFromName(name string) (domain.FileType, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return domain.FileTypePDF, true
	case ".docx":
		return domain.FileTypeDOCX, true
	default:
		return "", false
	}
}

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// sniffFileType checks the leading bytes against the claimed type and
// returns a reader that replays them. DOCX files are ZIP containers.
func sniffFileType(r io.Reader, fileType domain.FileType) (io.Reader, error) {
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read file header: %w", err)
	}
	head = head[:n]

	var ok bool
	switch fileType {
	case domain.FileTypePDF:
		ok = bytes.HasPrefix(head, pdfMagic)
	case domain.FileTypeDOCX:
		ok = bytes.HasPrefix(head, zipMagic)
	}
	if !ok {
		return nil, fmt.Errorf("file content does not match the %s format", fileType)
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFileName strips path components and replaces anything outside a
// conservative character set so the name is safe as a storage key.
func sanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	clean := unsafeFileNameChars.ReplaceAllString(base, "_")
	if clean == "" || clean == "." || clean == ".." {
		return "upload"
	}
	return clean
}
