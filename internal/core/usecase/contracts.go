package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
)

// ContractUseCase implements the owner-scoped CRUD operations. Every lookup
// goes through the owner filter, so a foreign contract ID is indistinguishable
// from a missing one.
type ContractUseCase struct {
	contracts ports.ContractRepository
	storage   ports.ObjectStorage
	logger    *slog.Logger
}

func NewContractUseCase(contracts ports.ContractRepository, storage ports.ObjectStorage, logger *slog.Logger) *ContractUseCase {
	return &ContractUseCase{contracts: contracts, storage: storage, logger: logger}
}

func (uc *ContractUseCase) List(ctx context.Context, ownerID string) ([]domain.ContractSummary, error) {
	summaries, err := uc.contracts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return summaries, nil
}

func (uc *ContractUseCase) Get(ctx context.Context, ownerID, contractID string) (*domain.Contract, error) {
	contract, err := uc.contracts.GetByOwner(ctx, ownerID, contractID)
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return contract, nil
}

func (uc *ContractUseCase) Update(ctx context.Context, ownerID, contractID string, title, description *string) (*domain.Contract, error) {
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		v := domain.NewValidationError()
		switch {
		case trimmed == "":
			v.Add("title", "title cannot be empty")
		case len(trimmed) > maxTitleLen:
			v.Add("title", fmt.Sprintf("title must be at most %d characters", maxTitleLen))
		}
		if v.HasErrors() {
			return nil, v
		}
		title = &trimmed
	}
	if err := uc.contracts.UpdateDetails(ctx, ownerID, contractID, title, description); err != nil {
		return nil, fmt.Errorf("update contract: %w", err)
	}
	return uc.Get(ctx, ownerID, contractID)
}

func (uc *ContractUseCase) Delete(ctx context.Context, ownerID, contractID string) error {
	contract, err := uc.contracts.GetByOwner(ctx, ownerID, contractID)
	if err != nil {
		return fmt.Errorf("get contract: %w", err)
	}
	if err := uc.contracts.Delete(ctx, ownerID, contractID); err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	// The row is gone; losing the file only leaks disk space.
	if err := uc.storage.Remove(ctx, contract.StoragePath); err != nil {
		uc.logger.Warn("failed to remove contract file",
			slog.String("contract_id", contractID),
			slog.String("path", contract.StoragePath),
			slog.String("error", err.Error()))
	}
	return nil
}

func (uc *ContractUseCase) MarkAnalyzed(ctx context.Context, ownerID, contractID string) (*domain.Contract, error) {
	contract, err := uc.contracts.GetByOwner(ctx, ownerID, contractID)
	if err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}
	if contract.Status != domain.StatusAnalyzed {
		if err := uc.contracts.UpdateStatus(ctx, contractID, domain.StatusAnalyzed, ""); err != nil {
			return nil, fmt.Errorf("mark analyzed: %w", err)
		}
	}
	return uc.contracts.GetByOwner(ctx, ownerID, contractID)
}
