package clauses

import (
	"context"
	"fmt"
	"strings"

	"github.com/legalease-app/backend/internal/core/domain"
)

// FallbackAnalyzer produces a rule-based risk assessment from the pattern
// table alone. It serves when no LLM is configured and when LLM calls fail.
type FallbackAnalyzer struct{}

func NewFallbackAnalyzer() *FallbackAnalyzer {
	return &FallbackAnalyzer{}
}

func (a *FallbackAnalyzer) AnalyzeRisks(_ context.Context, groups []domain.ClauseGroup, _ string) (*domain.RiskAssessment, error) {
	if len(groups) == 0 {
		return &domain.RiskAssessment{
			OverallRiskLevel: "LOW",
			OverallSummary:   "No key clauses detected. This contract appears standard, but review all terms carefully.",
			ClauseRisks:      []domain.ClauseRisk{},
		}, nil
	}

	highRisk := 0
	mediumRisk := 0
	for _, g := range groups {
		switch {
		case g.Type == "indemnity" || g.Type == "liability":
			highRisk++
		case g.RiskLevel == domain.RiskMedium:
			mediumRisk++
		}
	}

	overall := "LOW"
	switch {
	case highRisk > 0:
		overall = "HIGH"
	case mediumRisk > 2:
		overall = "MEDIUM"
	}

	summary := fmt.Sprintf("This contract contains %d key clause types: %s.",
		len(groups), strings.Join(clauseTitles(groups, 5), ", "))
	if highRisk > 0 {
		summary += " High-risk clauses detected. Review carefully with legal counsel."
	}

	risks := make([]domain.ClauseRisk, 0, len(groups))
	for _, g := range groups {
		risks = append(risks, domain.ClauseRisk{
			ClauseType:      g.Type,
			RiskLevel:       strings.ToUpper(g.RiskLevel),
			RiskExplanation: fmt.Sprintf("Found %d instance(s). %s.", g.Count, g.Description),
			Concerns:        knownConcerns(g.Type),
			Recommendations: "Review this clause carefully and consider negotiating terms.",
		})
	}

	return &domain.RiskAssessment{
		OverallRiskLevel: overall,
		OverallSummary:   summary,
		ClauseRisks:      risks,
	}, nil
}

func (a *FallbackAnalyzer) GenerateSummary(_ context.Context, _ string, groups []domain.ClauseGroup) (string, error) {
	if len(groups) == 0 {
		return "This contract has been uploaded and analyzed. No key clauses were automatically detected. Please review all terms carefully.", nil
	}
	return fmt.Sprintf("This contract contains %d key clause types including: %s.",
		len(groups), strings.Join(clauseTitles(groups, 5), ", ")), nil
}

func knownConcerns(clauseType string) []string {
	switch clauseType {
	case "auto_renewal":
		return []string{"Contract may auto-renew without notice"}
	case "indemnity":
		return []string{"You may be liable for damages"}
	case "termination":
		return []string{"Review termination conditions carefully"}
	default:
		return []string{}
	}
}

func clauseTitles(groups []domain.ClauseGroup, limit int) []string {
	out := make([]string, 0, min(len(groups), limit))
	for _, g := range groups[:min(len(groups), limit)] {
		out = append(out, titleCase(g.Type))
	}
	return out
}

func titleCase(clauseType string) string {
	words := strings.Split(clauseType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
