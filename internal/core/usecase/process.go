package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
)

// ProcessUseCase runs the analysis pipeline for one contract. Extraction
// failures are fatal for the contract (status error); LLM failures degrade
// to the heuristic assessor instead.
type ProcessUseCase struct {
	contracts  ports.ContractRepository
	extractor  ports.TextExtractor
	clauses    ports.ClauseExtractor
	analyzer   ports.RiskAnalyzer
	fallback   ports.RiskAnalyzer
	summarizer ports.ClauseSummarizer
	logger     *slog.Logger
	observer   ports.PipelineObserver
	now        func() time.Time
}

func NewProcessUseCase(
	contracts ports.ContractRepository,
	extractor ports.TextExtractor,
	clauses ports.ClauseExtractor,
	analyzer ports.RiskAnalyzer,
	fallback ports.RiskAnalyzer,
	summarizer ports.ClauseSummarizer,
	logger *slog.Logger,
) *ProcessUseCase {
	return &ProcessUseCase{
		contracts:  contracts,
		extractor:  extractor,
		clauses:    clauses,
		analyzer:   analyzer,
		fallback:   fallback,
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
	}
}

// WithObserver attaches a metrics sink; a nil observer keeps observation off.
func (uc *ProcessUseCase) WithObserver(observer ports.PipelineObserver) *ProcessUseCase {
	uc.observer = observer
	return uc
}

func (uc *ProcessUseCase) ProcessByID(ctx context.Context, contractID string) error {
	started := uc.now()

	contract, err := uc.contracts.GetByID(ctx, contractID)
	if err != nil {
		return fmt.Errorf("load contract: %w", err)
	}
	if contract.Status.IsTerminal() {
		uc.logger.Info("skipping contract in terminal status",
			slog.String("contract_id", contractID),
			slog.String("status", string(contract.Status)))
		return nil
	}

	if err := uc.contracts.UpdateStatus(ctx, contractID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if uc.observer != nil {
		uc.observer.QueueLag(started.Sub(contract.UploadedAt))
	}

	text, err := uc.extractor.Extract(ctx, contract)
	if err != nil {
		return uc.markFailed(ctx, contractID, fmt.Errorf("extract text: %w", err))
	}
	if text == "" {
		return uc.markFailed(ctx, contractID, fmt.Errorf("extract text: document contains no extractable text"))
	}
	if err := uc.contracts.SaveExtractedText(ctx, contractID, text); err != nil {
		return uc.markFailed(ctx, contractID, fmt.Errorf("save extracted text: %w", err))
	}

	groups := uc.clauses.ExtractClauses(text)
	if uc.observer != nil {
		uc.observer.ClausesFound(domain.TotalClauseCount(groups))
	}
	if err := uc.contracts.SaveClauses(ctx, contractID, groups); err != nil {
		return uc.markFailed(ctx, contractID, fmt.Errorf("save clauses: %w", err))
	}

	uc.summarizeClauses(ctx, contractID, groups)

	risk, summary := uc.assess(ctx, contractID, groups, text)

	analyzedAt := uc.now().UTC()
	result := domain.AnalysisResult{
		Clauses: groups,
		Risk:    risk,
		Summary: summary,
		Metadata: domain.AnalysisMetadata{
			ProcessingTimeSeconds: analyzedAt.Sub(started).Seconds(),
			ClauseTypesFound:      len(groups),
			TotalClauses:          domain.TotalClauseCount(groups),
			OverallRiskLevel:      risk.OverallRiskLevel,
		},
		AnalyzedAt: analyzedAt,
	}
	if err := uc.contracts.SaveAnalysis(ctx, contractID, result); err != nil {
		return uc.markFailed(ctx, contractID, fmt.Errorf("save analysis: %w", err))
	}

	uc.logger.Info("contract analyzed",
		slog.String("contract_id", contractID),
		slog.Int("clause_types", len(groups)),
		slog.Int("clauses", result.Metadata.TotalClauses),
		slog.String("overall_risk", risk.OverallRiskLevel),
		slog.Duration("took", analyzedAt.Sub(started)))
	return nil
}

// summarizeClauses attaches one-sentence LLM summaries in place. Failures
// leave the instance without a summary.
func (uc *ProcessUseCase) summarizeClauses(ctx context.Context, contractID string, groups []domain.ClauseGroup) {
	if uc.summarizer == nil {
		return
	}
	for gi := range groups {
		for ci := range groups[gi].Clauses {
			inst := &groups[gi].Clauses[ci]
			summary, err := uc.summarizer.SummarizeClause(ctx, inst.Text, groups[gi].Type, inst.Article)
			if uc.observer != nil {
				uc.observer.LLMCall("clause_summary", err)
			}
			if err != nil {
				uc.logger.Warn("clause summary failed",
					slog.String("contract_id", contractID),
					slog.String("clause_type", groups[gi].Type),
					slog.String("error", err.Error()))
				continue
			}
			inst.Summary = summary
		}
	}
}

// assess asks the primary analyzer for the risk assessment and summary,
// falling back to the heuristic one per call when the primary fails.
func (uc *ProcessUseCase) assess(ctx context.Context, contractID string, groups []domain.ClauseGroup, text string) (*domain.RiskAssessment, string) {
	risk, err := uc.analyzer.AnalyzeRisks(ctx, groups, text)
	if uc.observer != nil {
		uc.observer.LLMCall("risk_analysis", err)
	}
	if err != nil {
		uc.logger.Warn("risk analysis degraded to heuristics",
			slog.String("contract_id", contractID),
			slog.String("error", err.Error()))
		risk, err = uc.fallback.AnalyzeRisks(ctx, groups, text)
		if err != nil {
			risk = &domain.RiskAssessment{OverallRiskLevel: "MEDIUM", OverallSummary: "Risk assessment unavailable."}
		}
	}

	summary, err := uc.analyzer.GenerateSummary(ctx, text, groups)
	if uc.observer != nil {
		uc.observer.LLMCall("executive_summary", err)
	}
	if err != nil {
		uc.logger.Warn("summary generation degraded to heuristics",
			slog.String("contract_id", contractID),
			slog.String("error", err.Error()))
		summary, err = uc.fallback.GenerateSummary(ctx, text, groups)
		if err != nil {
			summary = ""
		}
	}
	return risk, summary
}

func (uc *ProcessUseCase) markFailed(ctx context.Context, contractID string, cause error) error {
	if err := uc.contracts.UpdateStatus(ctx, contractID, domain.StatusError, cause.Error()); err != nil {
		uc.logger.Error("failed to record contract error",
			slog.String("contract_id", contractID),
			slog.String("error", err.Error()))
	}
	return cause
}
