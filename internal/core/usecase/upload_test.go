package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
)

const testMaxFileSize = 1 << 20

func uploadReq(title, fileName, content string) ports.UploadRequest {
	return ports.UploadRequest{
		Title:    title,
		FileName: fileName,
		FileSize: int64(len(content)),
		Body:     strings.NewReader(content),
	}
}

func TestUpload(t *testing.T) {
	repo := newFakeContractRepo()
	storage := newFakeStorage()
	queue := &fakeQueue{}
	uc := NewUploadUseCase(repo, storage, queue, testMaxFileSize)

	contract, err := uc.Upload(context.Background(), "owner-1", uploadReq("Lease Agreement", "lease.pdf", "%PDF-1.7 content"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if contract.Status != domain.StatusUploaded {
		t.Fatalf("status = %q, want %q", contract.Status, domain.StatusUploaded)
	}
	if contract.FileType != domain.FileTypePDF {
		t.Fatalf("file type = %q, want pdf", contract.FileType)
	}
	if contract.OwnerID != "owner-1" {
		t.Fatalf("owner = %q", contract.OwnerID)
	}
	if len(storage.files) != 1 {
		t.Fatalf("expected 1 stored file, got %d", len(storage.files))
	}
	if len(queue.published) != 1 || queue.published[0] != contract.ID {
		t.Fatalf("expected contract ID published, got %v", queue.published)
	}
	if _, err := repo.GetByID(context.Background(), contract.ID); err != nil {
		t.Fatalf("contract not persisted: %v", err)
	}
}

func TestUploadValidation(t *testing.T) {
	uc := NewUploadUseCase(newFakeContractRepo(), newFakeStorage(), &fakeQueue{}, testMaxFileSize)

	cases := []struct {
		name  string
		req   ports.UploadRequest
		field string
	}{
		{"missing title", uploadReq("", "a.pdf", "x"), "title"},
		{"missing file", ports.UploadRequest{Title: "t"}, "file"},
		{"unsupported type", uploadReq("t", "a.exe", "x"), "file"},
		{"oversized", ports.UploadRequest{Title: "t", FileName: "a.pdf", FileSize: testMaxFileSize + 1, Body: strings.NewReader("x")}, "file"},
		{"pdf extension with foreign content", uploadReq("t", "a.pdf", "MZ not a pdf"), "file"},
		{"docx extension with pdf content", uploadReq("t", "a.docx", "%PDF-1.4 x"), "file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Upload(context.Background(), "owner-1", tc.req)
			if !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if fields := domain.FieldErrors(err); fields[tc.field] == "" {
				t.Fatalf("expected error on field %q, got %v", tc.field, fields)
			}
		})
	}
}

func TestUploadRejectedBeforeSideEffects(t *testing.T) {
	repo := newFakeContractRepo()
	storage := newFakeStorage()
	queue := &fakeQueue{}
	uc := NewUploadUseCase(repo, storage, queue, testMaxFileSize)

	if _, err := uc.Upload(context.Background(), "owner-1", uploadReq("", "a.txt", "x")); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := uc.Upload(context.Background(), "owner-1", uploadReq("t", "a.pdf", "MZ not a pdf")); err == nil {
		t.Fatal("expected magic byte mismatch error")
	}
	if len(storage.files) != 0 {
		t.Fatal("invalid upload must not reach storage")
	}
	if len(repo.contracts) != 0 {
		t.Fatal("invalid upload must not create a row")
	}
	if len(queue.published) != 0 {
		t.Fatal("invalid upload must not be enqueued")
	}
}

func TestUploadCleansUpOnCreateFailure(t *testing.T) {
	repo := newFakeContractRepo()
	repo.createErr = errors.New("db down")
	storage := newFakeStorage()
	uc := NewUploadUseCase(repo, storage, &fakeQueue{}, testMaxFileSize)

	if _, err := uc.Upload(context.Background(), "owner-1", uploadReq("t", "a.pdf", "%PDF-1.4 x")); err == nil {
		t.Fatal("expected error")
	}
	if len(storage.removed) != 1 {
		t.Fatalf("expected orphaned file removal, removed=%v", storage.removed)
	}
}

func TestUploadPublishFailureKeepsContract(t *testing.T) {
	repo := newFakeContractRepo()
	queue := &fakeQueue{publishErr: errors.New("nats down")}
	uc := NewUploadUseCase(repo, newFakeStorage(), queue, testMaxFileSize)

	contract, err := uc.Upload(context.Background(), "owner-1", uploadReq("t", "a.pdf", "%PDF-1.4 x"))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if contract == nil {
		t.Fatal("contract should be returned despite publish failure")
	}
	if _, err := repo.GetByID(context.Background(), contract.ID); err != nil {
		t.Fatalf("contract row should survive publish failure: %v", err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"lease.pdf", "lease.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\docs\My Contract (final).docx`, "My_Contract_final_.docx"},
		{"..", "upload"},
	}
	for _, tc := range cases {
		if got := sanitizeFileName(tc.in); got != tc.want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
