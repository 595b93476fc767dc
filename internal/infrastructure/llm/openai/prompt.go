package openai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/legalease-app/backend/internal/core/domain"
)

const docTypeWindow = 4000

// detectDocumentType classifies the contract from its leading text so the
// prompts name the document correctly. Loan indicators win over lease ones:
// sanction letters frequently mention property and get mislabelled otherwise.
func detectDocumentType(text string) string {
	head := strings.ToLower(text)
	if len(head) > docTypeWindow {
		head = head[:docTypeWindow]
	}

	containsAny := func(keywords ...string) bool {
		for _, k := range keywords {
			if strings.Contains(head, k) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("sanction letter", "loan sanction", "loan approval", "home loan", "housing finance"):
		return "loan sanction letter or loan agreement"
	case containsAny("lease", "landlord", "tenant", "demised premises"):
		return "lease agreement"
	case containsAny("service agreement", "service contract", "vendor", "provider", "supplier"):
		return "service agreement"
	case containsAny("employment", "employee", "employer"):
		return "employment agreement"
	default:
		return "contract or agreement"
	}
}

const promptInstancesPerType = 2

func buildRiskPrompt(docType string, groups []domain.ClauseGroup) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following %s clauses for potential risks and provide a risk assessment.\n\n", docType)
	b.WriteString("EXTRACTED CLAUSES:\n")

	for _, g := range groups {
		fmt.Fprintf(&b, "\n%s (%d instance(s)):\nDescription: %s\nInstances:\n", titleCase(g.Type), g.Count, g.Description)
		for i, inst := range bestInstances(g.Clauses, promptInstancesPerType) {
			article := ""
			if inst.Article != "" {
				article = fmt.Sprintf(" (Article %s)", inst.Article)
			}
			fmt.Fprintf(&b, "%d%s: %s\n", i+1, article, clip(inst.Text, 400))
		}
	}

	fmt.Fprintf(&b, `
TASK:
1. For each clause type, assess the risk level (LOW, MEDIUM, HIGH, CRITICAL) based ONLY on the clause text provided.
2. Write a brief explanation (1-2 sentences) of why the clause is risky or safe.
3. List 2-3 specific concerns using ONLY information explicitly stated in the clause text.
4. Provide ONE concise, actionable recommendation.
5. Provide an overall risk summary (2-3 sentences) for this %s.

CRITICAL RULES:
- ONLY reference information explicitly stated in the clause text above.
- If specific numbers or dates are not mentioned, say "amounts/dates not specified" instead of inventing them.
- In the overall_summary, refer to this document as a "%s".

RESPONSE FORMAT (JSON only, no other text):
{
  "overall_risk_level": "LOW|MEDIUM|HIGH|CRITICAL",
  "overall_summary": "2-3 sentence summary",
  "clause_risks": [
    {
      "clause_type": "auto_renewal",
      "risk_level": "MEDIUM",
      "risk_explanation": "1-2 sentence explanation",
      "concerns": ["2-3 specific concerns"],
      "recommendations": "One actionable sentence"
    }
  ]
}
`, docType, docType)
	return b.String()
}

// bestInstances prefers article-anchored, longer excerpts.
func bestInstances(instances []domain.ClauseInstance, limit int) []domain.ClauseInstance {
	sorted := make([]domain.ClauseInstance, len(instances))
	copy(sorted, instances)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := sorted[i].Article != "", sorted[j].Article != ""
		if ai != aj {
			return ai
		}
		return len(sorted[i].Text) > len(sorted[j].Text)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

const summaryTextWindow = 5000

func buildSummaryPrompt(docType, text string, groups []domain.ClauseGroup) string {
	types := make([]string, 0, 8)
	for _, g := range groups {
		types = append(types, titleCase(g.Type))
		if len(types) == 8 {
			break
		}
	}

	return fmt.Sprintf(`Create a brief executive summary (2-3 sentences) of this contract in plain English for a non-legal audience.

Contract text (excerpt):
%s

Key clause types detected: %s

INSTRUCTIONS:
1. This document is a %s; use that exact document type name.
2. Identify the parties involved when they are named in the text.
3. Include the most important terms that are explicitly stated: amounts, rates, durations.
4. Write 2-3 clear, complete sentences.
5. ONLY use information explicitly stated in the provided text.

Provide your summary:`, clip(text, summaryTextWindow), strings.Join(types, ", "), docType)
}

func buildClausePrompt(clauseText, clauseType, article string) string {
	articleInfo := ""
	if article != "" {
		articleInfo = fmt.Sprintf(" from Article %s", article)
	}
	typeName := titleCase(clauseType)

	return fmt.Sprintf(`Extract and summarize ONLY the %s-related information from the following clause text%s into ONE focused, complete sentence.

Original clause text:
%s

CRITICAL INSTRUCTIONS:
1. Focus ONLY on information related to "%s" and ignore unrelated topics in the text.
2. Write ONE complete sentence.
3. Include specific details when mentioned: amounts, percentages, dates, durations.
4. Use clear, simple language.
5. If you cannot find %s-specific information in the text, return "NONE". Do not make up information.

Now write your focused summary sentence:`, typeName, articleInfo, clip(clauseText, 1200), typeName, typeName)
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseRiskAssessment decodes the model's JSON answer. A malformed answer
// degrades to the extractor's baseline risk levels instead of failing the
// whole pipeline.
func parseRiskAssessment(raw string, groups []domain.ClauseGroup) (*domain.RiskAssessment, error) {
	jsonStr := jsonObjectRe.FindString(raw)
	if jsonStr != "" {
		var out domain.RiskAssessment
		if err := json.Unmarshal([]byte(jsonStr), &out); err == nil && out.OverallRiskLevel != "" {
			out.OverallRiskLevel = strings.ToUpper(out.OverallRiskLevel)
			for i := range out.ClauseRisks {
				out.ClauseRisks[i].RiskLevel = strings.ToUpper(out.ClauseRisks[i].RiskLevel)
			}
			return &out, nil
		}
	}

	out := &domain.RiskAssessment{
		OverallRiskLevel: "MEDIUM",
		OverallSummary:   clip(strings.TrimSpace(raw), 500),
		ClauseRisks:      make([]domain.ClauseRisk, 0, len(groups)),
	}
	for _, g := range groups {
		out.ClauseRisks = append(out.ClauseRisks, domain.ClauseRisk{
			ClauseType:      g.Type,
			RiskLevel:       strings.ToUpper(g.RiskLevel),
			RiskExplanation: fmt.Sprintf("Found %d instance(s) of %s", g.Count, g.Description),
			Concerns:        []string{},
			Recommendations: "Review these clauses carefully with legal counsel.",
		})
	}
	return out, nil
}

// Answers like "not specified in the text" are the model declining politely;
// they must not be shown as clause summaries.
var noInformationPhrases = []string{
	"not explicitly stated",
	"not mentioned",
	"not provided",
	"not specified",
	"cannot find",
	"unable to find",
	"not found in",
	"no information",
	"not available",
	"does not contain",
	"lacks information",
}

func isNoInformation(summary string) bool {
	lower := strings.ToLower(summary)
	if lower == "" || strings.HasPrefix(lower, "none") {
		return true
	}
	for _, phrase := range noInformationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
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

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
