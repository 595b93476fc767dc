package domain

// RiskLevel values used by the pattern table and the analyzer.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// ClauseGroup aggregates every instance of one clause type found in a
// contract, e.g. all indemnity provisions.
type ClauseGroup struct {
	Type        string           `json:"type"`
	Description string           `json:"description"`
	RiskLevel   string           `json:"risk_level"`
	Count       int              `json:"count"`
	Clauses     []ClauseInstance `json:"clauses"`
}

// ClauseInstance is one matched provision with surrounding context.
type ClauseInstance struct {
	Text     string `json:"text"`
	Match    string `json:"match"`
	Position int    `json:"position"`
	Article  string `json:"article,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// RiskAssessment is the structured commentary produced for a contract,
// either by the LLM or by the heuristic fallback.
type RiskAssessment struct {
	OverallRiskLevel string       `json:"overall_risk_level"`
	OverallSummary   string       `json:"overall_summary"`
	ClauseRisks      []ClauseRisk `json:"clause_risks"`
}

type ClauseRisk struct {
	ClauseType      string   `json:"clause_type"`
	RiskLevel       string   `json:"risk_level"`
	RiskExplanation string   `json:"risk_explanation"`
	Concerns        []string `json:"concerns"`
	Recommendations string   `json:"recommendations"`
}

// TotalClauseCount sums instances across all groups.
func TotalClauseCount(groups []ClauseGroup) int {
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	return total
}
