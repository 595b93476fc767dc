package clauses

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/legalease-app/backend/internal/core/domain"
)

const (
	contextChars  = 500
	minClauseLen  = 50
	shortClause   = 100
	maxClauseLen  = 1200
	dedupDistance = 200
	dedupOverlap  = 0.7
)

// Extractor finds legal provisions in contract text by matching the pattern
// table, then expanding each hit to a sentence-level excerpt with the nearest
// article number attached.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractClauses(text string) []domain.ClauseGroup {
	if text == "" {
		return nil
	}

	var groups []domain.ClauseGroup
	for _, p := range clausePatterns {
		var found []domain.ClauseInstance
		for _, keyword := range p.keywords {
			for _, inst := range matchWithContext(text, keyword) {
				if !isRelevant(inst, p.clauseType) {
					continue
				}
				if isDuplicate(found, inst) {
					continue
				}
				found = append(found, inst)
			}
		}
		found = prioritizeAndLimit(found, p.maxClauses)
		if len(found) == 0 {
			continue
		}
		groups = append(groups, domain.ClauseGroup{
			Type:        p.clauseType,
			Description: p.description,
			RiskLevel:   p.riskLevel,
			Count:       len(found),
			Clauses:     found,
		})
	}
	return groups
}

var (
	pageMarkerRe    = regexp.MustCompile(`(?i)---\s*Page\s+\d+\s*---`)
	tocRowRe        = regexp.MustCompile(`(?i)^\s*article\s+\d+\.\s*\w+\s+\d+\s*$`)
	pageRefRe       = regexp.MustCompile(`(?i)^(page|p\.?)\s*\d+$`)
	sectionRefRe    = regexp.MustCompile(`(?i)^\s*section\s+\d+\.\d+\.?\s*$`)
	articleTitleRe  = regexp.MustCompile(`(?i)^\s*article\s+\d+\.\s*[A-Z\s]+$`)
	articleNumberRe = regexp.MustCompile(`(?i)ARTICLE\s+(\d+)`)
	leadingItemRe   = regexp.MustCompile(`^\s*\d+\.\s+`)
)

// matchWithContext expands every keyword hit to the surrounding sentence.
// Very short excerpts fall back to a fixed-size window around the match.
func matchWithContext(text string, keyword *regexp.Regexp) []domain.ClauseInstance {
	var out []domain.ClauseInstance
	for _, loc := range keyword.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]

		excerpt := text[sentenceStart(text, start):sentenceEnd(text, end)]
		if len(excerpt) < shortClause {
			excerpt = text[max(0, start-contextChars):min(len(text), end+contextChars)]
		}
		excerpt = cleanExcerpt(excerpt)
		excerpt = truncateAtSentence(excerpt, maxClauseLen)

		out = append(out, domain.ClauseInstance{
			Text:     excerpt,
			Match:    text[start:end],
			Position: start,
			Article:  nearbyArticle(text, start),
		})
	}
	return out
}

func sentenceStart(text string, pos int) int {
	for i := pos - 1; i >= max(0, pos-contextChars); i-- {
		switch text[i] {
		case '.', '!', '\n':
			return i + 1
		}
	}
	return max(0, pos-contextChars)
}

func sentenceEnd(text string, pos int) int {
	for i := pos; i < min(len(text), pos+contextChars); i++ {
		switch text[i] {
		case '.', '!', '\n':
			return i + 1
		}
	}
	return min(len(text), pos+contextChars)
}

func cleanExcerpt(s string) string {
	s = pageMarkerRe.ReplaceAllString(s, "")
	s = leadingItemRe.ReplaceAllString(s, "")
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' }), " ")
	return strings.TrimSpace(s)
}

func truncateAtSentence(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if i := strings.LastIndexByte(cut, '.'); i > limit*3/4 {
		return cut[:i+1]
	}
	if i := strings.LastIndexByte(cut, '\n'); i > limit*3/4 {
		return cut[:i]
	}
	return cut + "..."
}

// nearbyArticle returns the number of an "ARTICLE N" heading shortly before
// or at the match, empty when none is close enough.
func nearbyArticle(text string, pos int) string {
	window := text[max(0, pos-200):min(len(text), pos+100)]
	m := articleNumberRe.FindStringSubmatch(window)
	if m == nil {
		return ""
	}
	return m[1]
}

var (
	amountRe       = regexp.MustCompile(`(?i)\$\s*\d+|amount|refund|deposit`)
	rentIncreaseRe = regexp.MustCompile(`(?i)\d+%|increas|escalat|\$\s*\d+.*per|annum|annual`)
	durationRe     = regexp.MustCompile(`(?i)\d+\s*(month|year|day)|\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|commenc|start|begin|end|expir|terminat`)
	paymentInfoRe  = regexp.MustCompile(`(?i)[$₹]\s*\d+|amount|fee|payment|rent|installment|emi|per\s+month|monthly|annual|due\s+date|processing.*charge`)
	warrantyRe     = regexp.MustCompile(`(?i)\bwarrant(y|ies)\b|\bguarantee\b|(no|disclaim).*warrant|as.*is.*warrant`)
	rateInfoRe     = regexp.MustCompile(`(?i)\d+\.?\d*\s*%|percent|rate.*of.*interest|interest.*rate|spread|floating|fixed.*rate`)
	penalInfoRe    = regexp.MustCompile(`(?i)penal.*interest|penalty.*interest|overdue|default.*interest|\d+%.*penal`)
	prepayInfoRe   = regexp.MustCompile(`(?i)prepayment|foreclosur|early.*repayment|pre.*payment.*charge`)
)

// isRelevant drops hits that are not real provisions: table-of-contents rows,
// bare page or section references, and excerpts lacking the content a clause
// of the given type must carry.
func isRelevant(inst domain.ClauseInstance, clauseType string) bool {
	text := strings.TrimSpace(inst.Text)
	if len(text) < minClauseLen {
		return false
	}
	if tocRowRe.MatchString(text) || pageRefRe.MatchString(text) ||
		sectionRefRe.MatchString(text) || articleTitleRe.MatchString(text) {
		return false
	}

	switch clauseType {
	case "security_deposit":
		return amountRe.MatchString(text)
	case "rent_increase":
		return rentIncreaseRe.MatchString(text)
	case "duration_term":
		return durationRe.MatchString(text)
	case "payment":
		return paymentInfoRe.MatchString(text)
	case "warranty":
		return warrantyRe.MatchString(text)
	case "interest_rate":
		return rateInfoRe.MatchString(text)
	case "penal_interest":
		return penalInfoRe.MatchString(text)
	case "prepayment":
		return prepayInfoRe.MatchString(text)
	}
	return true
}

// isDuplicate treats two instances as the same provision when their word
// sets overlap heavily or their positions are close.
func isDuplicate(existing []domain.ClauseInstance, inst domain.ClauseInstance) bool {
	for _, e := range existing {
		if abs(e.Position-inst.Position) < dedupDistance {
			return true
		}
		if jaccard(e.Text, inst.Text) >= dedupOverlap {
			return true
		}
	}
	return false
}

var wordRe = regexp.MustCompile(`\w+`)

func jaccard(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		out[w] = struct{}{}
	}
	return out
}

// prioritizeAndLimit puts article-anchored instances first in article order,
// the rest by excerpt length, and caps the result.
func prioritizeAndLimit(instances []domain.ClauseInstance, limit int) []domain.ClauseInstance {
	if len(instances) == 0 {
		return nil
	}

	var withArticle, withoutArticle []domain.ClauseInstance
	for _, inst := range instances {
		if inst.Article != "" {
			withArticle = append(withArticle, inst)
		} else {
			withoutArticle = append(withoutArticle, inst)
		}
	}

	sort.SliceStable(withArticle, func(i, j int) bool {
		ai, aj := articleOrder(withArticle[i].Article), articleOrder(withArticle[j].Article)
		if ai != aj {
			return ai < aj
		}
		return withArticle[i].Position < withArticle[j].Position
	})
	sort.SliceStable(withoutArticle, func(i, j int) bool {
		return len(withoutArticle[i].Text) > len(withoutArticle[j].Text)
	})

	out := append(withArticle, withoutArticle...)
	if limit <= 0 {
		limit = 3
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func articleOrder(article string) int {
	n, err := strconv.Atoi(article)
	if err != nil {
		return 999
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
