package clause

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Vaibhav-Uniyal/policyq/internal/classify"
	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

var (
	sentenceRe    = regexp.MustCompile(`[.!?]+`)
	daysRe        = regexp.MustCompile(`(\d+)\s*days?`)
	monthsRe      = regexp.MustCompile(`(\d+)\s*months?`)
	percentRe     = regexp.MustCompile(`(\d+)%`)
	coverageCues  = []string{"cover", "coverage", "include", "provide"}
	maternityCues = []string{"maternity", "pregnancy", "childbirth"}
	surgeryCues   = []string{"knee", "cataract", "surgery", "operation"}
)

// Matcher extracts typed clauses from retrieved chunks and scores their
// relevance to a question.
type Matcher struct {
	topK      int
	threshold float64
}

// NewMatcher creates a matcher keeping up to topK clauses whose relevance
// exceeds threshold.
func NewMatcher(topK int, threshold float64) *Matcher {
	return &Matcher{topK: topK, threshold: threshold}
}

// FindBestMatches returns the top clauses relevant to the question, most
// relevant first, with type-specific details extracted.
func (m *Matcher) FindBestMatches(question model.ProcessedQuestion, results []model.SearchResult) []model.MatchedClause {
	var matched []model.MatchedClause

	for i := range results {
		result := &results[i]
		for _, c := range ExtractClauses(result.Chunk.Content) {
			relevance := m.relevance(c, question)
			if relevance <= m.threshold {
				continue
			}
			c.Relevance = relevance
			c.Chunk = result.Chunk
			matched = append(matched, c)
		}
	}

	// Stable keeps document order among ties.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Relevance > matched[j].Relevance
	})

	if len(matched) > m.topK {
		matched = matched[:m.topK]
	}
	for i := range matched {
		matched[i].Details = extractDetails(matched[i].Text, question.Type)
	}
	return matched
}

// ExtractClauses splits text into sentences and keeps those matching a
// known clause pattern, with a confidence from pattern similarity.
func ExtractClauses(text string) []model.MatchedClause {
	var clauses []model.MatchedClause

	for _, sentence := range sentenceRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < 10 {
			continue
		}
		lowered := strings.ToLower(sentence)
		cType, ok := identifyType(lowered)
		if !ok {
			continue
		}
		clauses = append(clauses, model.MatchedClause{
			Text:       sentence,
			Type:       cType,
			Confidence: patternConfidence(lowered, cType),
		})
	}
	return clauses
}

func identifyType(lowered string) (model.QuestionType, bool) {
	for _, entry := range classify.ClausePatterns {
		for _, re := range entry.Patterns {
			if re.MatchString(lowered) {
				return entry.Type, true
			}
		}
	}
	return "", false
}

// patternConfidence is the best similarity between the sentence and the
// pattern sources for its type.
func patternConfidence(lowered string, cType model.QuestionType) float64 {
	var best float64
	for _, entry := range classify.ClausePatterns {
		if entry.Type != cType {
			continue
		}
		for _, re := range entry.Patterns {
			if r := similarityRatio(lowered, re.String()); r > best {
				best = r
			}
		}
	}
	return best
}

// similarityRatio is 2*LCS(a,b) / (len(a)+len(b)), in [0,1].
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				cur[j+1] = prev[j] + 1
			} else if prev[j+1] >= cur[j] {
				cur[j+1] = prev[j+1]
			} else {
				cur[j+1] = cur[j]
			}
		}
		prev, cur = cur, prev
	}
	return 2.0 * float64(prev[len(b)]) / float64(len(a)+len(b))
}

// relevance combines term overlap, type agreement, and intent hits:
// 0.4*terms + 0.3*type + 0.3*intent, capped at 1.0.
func (m *Matcher) relevance(c model.MatchedClause, question model.ProcessedQuestion) float64 {
	lowered := strings.ToLower(c.Text)

	termScore := 0.0
	if len(question.ExtractedTerms) > 0 {
		hits := 0
		for _, term := range question.ExtractedTerms {
			if strings.Contains(lowered, strings.ToLower(term)) {
				hits++
			}
		}
		termScore = float64(hits) / float64(len(question.ExtractedTerms))
	}

	typeScore := 0.0
	if c.Type == question.Type {
		typeScore = 1.0
	} else {
		for _, entity := range question.Intent.Entities {
			if entity == string(c.Type) {
				typeScore = 0.8
				break
			}
		}
	}

	intentScore := 0.0
	for _, entity := range question.Intent.Entities {
		if strings.Contains(lowered, strings.ToLower(entity)) {
			intentScore += 0.3
		}
	}
	for _, condition := range question.Intent.Conditions {
		if strings.Contains(lowered, strings.ToLower(condition)) {
			intentScore += 0.3
		}
	}

	score := termScore*0.4 + typeScore*0.3 + intentScore*0.3
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// extractDetails pulls out the numeric or categorical payload the question
// type cares about.
func extractDetails(text string, qType model.QuestionType) map[string]any {
	details := map[string]any{}
	lowered := strings.ToLower(text)

	switch qType {
	case model.TypeGracePeriod:
		if m := daysRe.FindStringSubmatch(lowered); m != nil {
			details["days"] = atoi(m[1])
		}
	case model.TypeWaitingPeriod:
		if m := monthsRe.FindStringSubmatch(lowered); m != nil {
			details["months"] = atoi(m[1])
		}
	case model.TypeCoverage:
		details["coverage_type"] = "not_mentioned"
		for _, cue := range coverageCues {
			if strings.Contains(lowered, cue) {
				details["coverage_type"] = "included"
				break
			}
		}
	case model.TypeMaternity:
		details["maternity_coverage"] = "not_mentioned"
		for _, cue := range maternityCues {
			if strings.Contains(lowered, cue) {
				details["maternity_coverage"] = "included"
				break
			}
		}
	case model.TypeSurgery:
		for _, cue := range surgeryCues {
			if strings.Contains(lowered, cue) {
				details["surgery_type"] = cue
				break
			}
		}
	case model.TypeNCD:
		if m := percentRe.FindStringSubmatch(text); m != nil {
			details["percentage"] = atoi(m[1])
		}
	case model.TypeRoomRent:
		if m := percentRe.FindStringSubmatch(text); m != nil {
			details["limit_percentage"] = atoi(m[1])
		}
	}
	return details
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
