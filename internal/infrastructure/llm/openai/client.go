package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/infrastructure/resilience"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.2

	riskMaxTokens    = 1500
	summaryMaxTokens = 250
	clauseMaxTokens  = 180
)

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

// Analyzer talks to the OpenAI chat API for risk analysis, executive
// summaries and per-clause one-liners. All calls run through the shared
// resilience executor.
type Analyzer struct {
	model       llms.Model
	temperature float64
	executor    *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}

	model, err := lcopenai.New(
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}
	return &Analyzer{
		model:       model,
		temperature: cfg.Temperature,
		executor:    executor,
	}, nil
}

func (a *Analyzer) AnalyzeRisks(ctx context.Context, groups []domain.ClauseGroup, text string) (*domain.RiskAssessment, error) {
	docType := detectDocumentType(text)
	system := fmt.Sprintf(
		"You are a precise legal contract analyst. You ONLY analyze information explicitly stated in the provided clauses. "+
			"You never make assumptions, infer missing details, or hallucinate information. Keep all responses brief and focused. "+
			"This document is a %s; use that exact document type name in the overall_summary field.", docType)

	raw, err := a.generate(ctx, "openai.analyze_risks", system, buildRiskPrompt(docType, groups),
		llms.WithJSONMode(), llms.WithMaxTokens(riskMaxTokens))
	if err != nil {
		return nil, err
	}
	return parseRiskAssessment(raw, groups)
}

func (a *Analyzer) GenerateSummary(ctx context.Context, text string, groups []domain.ClauseGroup) (string, error) {
	docType := detectDocumentType(text)
	system := "You are a precise legal document analyzer. You ONLY explain information explicitly stated in contracts. " +
		"You never confuse document types. Keep summaries brief, 2-3 sentences at most."

	raw, err := a.generate(ctx, "openai.generate_summary", system, buildSummaryPrompt(docType, text, groups),
		llms.WithMaxTokens(summaryMaxTokens))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// SummarizeClause returns one focused sentence for a clause instance, or an
// empty string when the model reports no clause-specific information.
func (a *Analyzer) SummarizeClause(ctx context.Context, clauseText, clauseType, article string) (string, error) {
	system := "You are an expert legal document analyst. You extract ONLY the information related to the specified " +
		"clause type and rewrite it as ONE clear, grammatically complete sentence. You never combine unrelated topics " +
		"and only use information explicitly stated in the provided text."

	raw, err := a.generate(ctx, "openai.summarize_clause", system, buildClausePrompt(clauseText, clauseType, article),
		llms.WithMaxTokens(clauseMaxTokens))
	if err != nil {
		return "", err
	}

	summary := strings.Trim(strings.TrimSpace(raw), `"'`)
	if isNoInformation(summary) {
		return "", nil
	}
	return summary, nil
}

func (a *Analyzer) generate(ctx context.Context, operation, system, prompt string, opts ...llms.CallOption) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	opts = append(opts, llms.WithTemperature(a.temperature))

	var out string
	call := func(callCtx context.Context) error {
		resp, err := a.model.GenerateContent(callCtx, messages, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", operation, err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%s: empty response", operation)
		}
		out = resp.Choices[0].Content
		return nil
	}

	var err error
	if a.executor != nil {
		err = a.executor.Execute(ctx, operation, call, classifyLLMError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return out, nil
}
