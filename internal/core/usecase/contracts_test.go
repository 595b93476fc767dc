package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/legalease-app/backend/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedContract(t *testing.T, repo *fakeContractRepo, ownerID, id string, uploadedAt time.Time) *domain.Contract {
	t.Helper()
	c := &domain.Contract{
		ID:          id,
		OwnerID:     ownerID,
		Title:       "Contract " + id,
		FileName:    id + ".pdf",
		FileType:    domain.FileTypePDF,
		StoragePath: id + "_file.pdf",
		Status:      domain.StatusUploaded,
		UploadedAt:  uploadedAt,
		UpdatedAt:   uploadedAt,
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	return c
}

func TestListOwnerScopedNewestFirst(t *testing.T) {
	repo := newFakeContractRepo()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedContract(t, repo, "owner-1", "c1", base)
	seedContract(t, repo, "owner-1", "c2", base.Add(time.Hour))
	seedContract(t, repo, "owner-2", "c3", base.Add(2*time.Hour))

	uc := NewContractUseCase(repo, newFakeStorage(), discardLogger())
	got, err := uc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 contracts, got %d", len(got))
	}
	if got[0].ID != "c2" || got[1].ID != "c1" {
		t.Fatalf("expected newest first [c2 c1], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestGetForeignContractIsNotFound(t *testing.T) {
	repo := newFakeContractRepo()
	seedContract(t, repo, "owner-1", "c1", time.Now())

	uc := NewContractUseCase(repo, newFakeStorage(), discardLogger())
	if _, err := uc.Get(context.Background(), "owner-2", "c1"); !domain.IsKind(err, domain.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newFakeContractRepo()
	seedContract(t, repo, "owner-1", "c1", time.Now())
	uc := NewContractUseCase(repo, newFakeStorage(), discardLogger())

	title := "  Renewed Lease  "
	desc := "second term"
	got, err := uc.Update(context.Background(), "owner-1", "c1", &title, &desc)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "Renewed Lease" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Description != "second term" {
		t.Fatalf("description = %q", got.Description)
	}

	empty := "   "
	if _, err := uc.Update(context.Background(), "owner-1", "c1", &empty, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("empty title: expected ErrInvalidInput, got %v", err)
	}

	if _, err := uc.Update(context.Background(), "owner-2", "c1", nil, &desc); !domain.IsKind(err, domain.ErrContractNotFound) {
		t.Fatalf("foreign update: expected ErrContractNotFound, got %v", err)
	}
}

func TestDeleteRemovesRowAndFile(t *testing.T) {
	repo := newFakeContractRepo()
	storage := newFakeStorage()
	c := seedContract(t, repo, "owner-1", "c1", time.Now())
	storage.files[c.StoragePath] = []byte("data")

	uc := NewContractUseCase(repo, storage, discardLogger())
	if err := uc.Delete(context.Background(), "owner-1", "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "c1"); !domain.IsKind(err, domain.ErrContractNotFound) {
		t.Fatal("row should be gone")
	}
	if len(storage.removed) != 1 || storage.removed[0] != c.StoragePath {
		t.Fatalf("expected file removal, removed=%v", storage.removed)
	}
}

func TestDeleteForeignContract(t *testing.T) {
	repo := newFakeContractRepo()
	storage := newFakeStorage()
	seedContract(t, repo, "owner-1", "c1", time.Now())

	uc := NewContractUseCase(repo, storage, discardLogger())
	if err := uc.Delete(context.Background(), "owner-2", "c1"); !domain.IsKind(err, domain.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "c1"); err != nil {
		t.Fatal("foreign delete must not mutate the row")
	}
}

func TestMarkAnalyzed(t *testing.T) {
	repo := newFakeContractRepo()
	seedContract(t, repo, "owner-1", "c1", time.Now())

	uc := NewContractUseCase(repo, newFakeStorage(), discardLogger())
	got, err := uc.MarkAnalyzed(context.Background(), "owner-1", "c1")
	if err != nil {
		t.Fatalf("MarkAnalyzed: %v", err)
	}
	if got.Status != domain.StatusAnalyzed {
		t.Fatalf("status = %q, want analyzed", got.Status)
	}

	// Idempotent on an already analyzed contract.
	if _, err := uc.MarkAnalyzed(context.Background(), "owner-1", "c1"); err != nil {
		t.Fatalf("second MarkAnalyzed: %v", err)
	}
}
