package clauses

import (
	"regexp"

	"github.com/legalease-app/backend/internal/core/domain"
)

// pattern describes one clause type: the keyword regexes that detect it,
// a human-readable description and a baseline risk level used by the
// heuristic assessor.
type pattern struct {
	clauseType  string
	description string
	riskLevel   string
	keywords    []*regexp.Regexp
	maxClauses  int
}

// compileKeywords wraps word-initial keywords in \b so e.g. "renew" does not
// fire inside "renewable-energy" headings; keywords anchored on symbols keep
// their own boundaries.
func compileKeywords(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		wrapped := expr
		if isWordStart(expr[0]) {
			wrapped = `\b` + wrapped
		}
		if isWordEnd(expr[len(expr)-1]) {
			wrapped += `\b`
		}
		out = append(out, regexp.MustCompile(`(?i)`+wrapped))
	}
	return out
}

func isWordStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isWordEnd(c byte) bool {
	return isWordStart(c)
}

var clausePatterns = []pattern{
	{
		clauseType:  "auto_renewal",
		description: "Auto-renewal clauses that automatically extend the contract",
		riskLevel:   domain.RiskMedium,
		keywords: compileKeywords(
			`auto.*renew`,
			`automatic.*renewal`,
			`shall.*automatically.*renew`,
			`self.*renew`,
			`evergreen`,
			`renew.*automatically`,
		),
		maxClauses: 3,
	},
	{
		clauseType:  "indemnity",
		description: "Indemnity clauses that transfer liability",
		riskLevel:   domain.RiskHigh,
		keywords: compileKeywords(
			`indemnif`,
			`hold.*harmless`,
			`assume.*liability`,
			`defend.*indemnif`,
			`indemnification`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "termination",
		description: "Termination and early termination clauses",
		riskLevel:   domain.RiskMedium,
		keywords: compileKeywords(
			`terminat`,
			`cancel`,
			`expir`,
			`end.*contract`,
			`breach.*terminat`,
			`early.*terminat`,
		),
		maxClauses: 3,
	},
	{
		clauseType:  "confidentiality",
		description: "Confidentiality and non-disclosure clauses",
		riskLevel:   domain.RiskLow,
		keywords: compileKeywords(
			`confidential`,
			`non.*disclosure`,
			`nda`,
			`proprietary.*information`,
			`trade.*secret`,
		),
		maxClauses: 3,
	},
	{
		clauseType:  "payment",
		description: "Payment terms, fees, rent schedules, and financial obligations",
		riskLevel:   domain.RiskLow,
		keywords: compileKeywords(
			`payment.*term`,
			`invoice`,
			`due.*date`,
			`late.*fee`,
			`payment.*schedule`,
			`recurring.*payment`,
			`base.*rent`,
			`monthly.*installment`,
			`rent.*payable`,
			`annual.*rent`,
			`\$\s*\d+.*per`,
			`payment.*of.*\$\d+`,
			`fee.*of.*\$\d+`,
			`compensation`,
			`reimbursement`,
			`equated.*monthly.*installment`,
			`installment.*payment`,
			`processing.*charge`,
		),
		maxClauses: 3,
	},
	{
		clauseType:  "security_deposit",
		description: "Security deposit and refund terms",
		riskLevel:   domain.RiskLow,
		keywords: compileKeywords(
			`security.*deposit`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "rent_increase",
		description: "Rent escalation and increase clauses",
		riskLevel:   domain.RiskMedium,
		keywords: compileKeywords(
			`rent.*increas`,
			`escalat`,
			`rent.*adjust`,
			`annual.*increas`,
			`year.*over.*year`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "liability",
		description: "Liability limitation clauses",
		riskLevel:   domain.RiskMedium,
		keywords: compileKeywords(
			`limitation.*liability`,
			`exclude.*liability`,
			`no.*liability`,
			`liability.*cap`,
			`consequential.*damages`,
			`indirect.*damages`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "dispute_resolution",
		description: "Dispute resolution and jurisdiction clauses",
		riskLevel:   domain.RiskMedium,
		keywords: compileKeywords(
			`dispute.*resolution`,
			`arbitration`,
			`mediation`,
			`jurisdiction`,
			`governing.*law`,
			`venue`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "force_majeure",
		description: "Force majeure clauses for unforeseeable circumstances",
		riskLevel:   domain.RiskLow,
		keywords: compileKeywords(
			`force.*majeure`,
			`act.*god`,
			`unforeseeable.*circumstance`,
			`natural.*disaster`,
		),
		maxClauses: 3,
	},
	{
		clauseType:  "intellectual_property",
		description: "Intellectual property and ownership clauses",
		riskLevel:   domain.RiskMedium,
		keywords: compileKeywords(
			`intellectual.*property`,
			`ip.*rights`,
			`copyright`,
			`trademark`,
			`patent`,
			`ownership.*work`,
		),
		maxClauses: 3,
	},
	{
		clauseType:  "warranty",
		description: "Warranty and guarantee clauses",
		riskLevel:   domain.RiskMedium,
		keywords: compileKeywords(
			`warrant`,
			`guarantee`,
			`warranty.*period`,
			`as.*is`,
			`no.*warranty`,
			`disclaim.*warranty`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "duration_term",
		description: "Contract duration, term, and effective dates",
		riskLevel:   domain.RiskLow,
		keywords: compileKeywords(
			`term.*of.*\d+`,
			`duration.*\d+`,
			`commencement.*date`,
			`expiration.*date`,
			`effective.*date`,
			`period.*of.*performance`,
			`agreement.*period`,
			`contract.*term`,
			`lease.*term`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "interest_rate",
		description: "Interest rate, floating/fixed rates, and rate calculation methods",
		riskLevel:   domain.RiskMedium,
		keywords: compileKeywords(
			`rate.*of.*interest`,
			`interest.*rate`,
			`floating.*rate`,
			`fixed.*rate`,
			`spread.*over`,
			`percent.*per.*annum`,
			`%.*per.*annum`,
			`%.*p\.?a\.?`,
			`annual.*percentage.*rate`,
			`compound.*interest`,
			`rate.*reset`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "penal_interest",
		description: "Penal interest, penalty charges, and overdue/default charges",
		riskLevel:   domain.RiskHigh,
		keywords: compileKeywords(
			`penal.*interest`,
			`penalty.*interest`,
			`overdue.*interest`,
			`default.*interest`,
			`penal.*charge`,
			`penalty.*charge`,
			`overdue.*charge`,
			`default.*charge`,
			`%.*on.*overdue`,
		),
		maxClauses: 2,
	},
	{
		clauseType:  "prepayment",
		description: "Prepayment charges, foreclosure charges, and early repayment terms",
		riskLevel:   domain.RiskLow,
		keywords: compileKeywords(
			`prepayment`,
			`pre.*payment.*charge`,
			`early.*repayment`,
			`part.*prepayment`,
			`full.*prepayment`,
			`foreclosur`,
			`foreclosure.*charge`,
		),
		maxClauses: 2,
	},
}
