package clause

import (
	"testing"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

func graceQuestion() model.ProcessedQuestion {
	terms := []string{"grace", "period", "premium", "payment"}
	return model.ProcessedQuestion{
		OriginalQuestion: "What is the grace period for premium payment?",
		Type:             model.TypeGracePeriod,
		ExtractedTerms:   terms,
		Intent: model.StructuredIntent{
			QueryType:     "general",
			Entities:      terms,
			Conditions:    []string{},
			Focus:         "coverage",
			SpecificTerms: terms,
		},
		Weight: 1.0,
	}
}

func resultWith(content string) model.SearchResult {
	return model.SearchResult{
		Chunk: &model.DocumentChunk{
			ID:             "doc_0",
			Content:        content,
			DocumentSource: "doc",
		},
		SimilarityScore: 0.9,
	}
}

func TestExtractClauses(t *testing.T) {
	text := "A grace period of 30 days is allowed for payment of renewal premium. " +
		"Short. " +
		"The weather today is pleasant and mild across the region."

	clauses := ExtractClauses(text)
	if len(clauses) != 1 {
		t.Fatalf("got %d clauses, want 1", len(clauses))
	}
	c := clauses[0]
	if c.Type != model.TypeGracePeriod {
		t.Errorf("type = %s, want grace_period", c.Type)
	}
	if c.Confidence <= 0 || c.Confidence > 1 {
		t.Errorf("confidence %v outside (0,1]", c.Confidence)
	}
}

func TestFindBestMatchesGracePeriod(t *testing.T) {
	m := NewMatcher(3, 0.5)
	results := []model.SearchResult{resultWith(
		"A grace period of 30 days is allowed for payment of renewal premium. " +
			"The policy shall cover expenses incurred during hospitalization.",
	)}

	matches := m.FindBestMatches(graceQuestion(), results)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	best := matches[0]
	if best.Relevance <= 0.5 || best.Relevance > 1.0 {
		t.Errorf("relevance %v outside (0.5,1.0]", best.Relevance)
	}
	if days, ok := best.Details["days"]; !ok || days != 30 {
		t.Errorf("details days = %v, want 30", days)
	}
	if best.Chunk == nil || best.Chunk.ID != "doc_0" {
		t.Errorf("chunk not carried through: %+v", best.Chunk)
	}
}

func TestFindBestMatchesCapsTopK(t *testing.T) {
	m := NewMatcher(3, 0.5)
	question := model.ProcessedQuestion{
		OriginalQuestion: "Does the policy cover hospitalization?",
		Type:             model.TypeCoverage,
		ExtractedTerms:   []string{"cover", "hospitalization"},
		Intent: model.StructuredIntent{
			QueryType: "general",
			Entities:  []string{"cover"},
			Focus:     "coverage",
		},
		Weight: 2.0,
	}
	results := []model.SearchResult{resultWith(
		"The policy shall cover expenses for hospitalization charges. " +
			"The policy shall cover expenses for ambulance transport. " +
			"The policy shall cover expenses for daycare treatment. " +
			"The policy shall cover expenses for domiciliary care.",
	)}

	matches := m.FindBestMatches(question, results)
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want top 3", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Relevance > matches[i-1].Relevance {
			t.Errorf("matches not sorted: %v before %v", matches[i-1].Relevance, matches[i].Relevance)
		}
	}
}

func TestFindBestMatchesDropsIrrelevant(t *testing.T) {
	m := NewMatcher(3, 0.5)
	// Clause types exist in the text but none relate to a grace period
	// question, so everything falls below the relevance threshold.
	results := []model.SearchResult{resultWith(
		"Maternity expenses are payable after continuous coverage. " +
			"AYUSH treatment costs are reimbursed at network hospitals.",
	)}

	if matches := m.FindBestMatches(graceQuestion(), results); len(matches) != 0 {
		t.Errorf("got %d matches, want none", len(matches))
	}
}

func TestDetailExtraction(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		qType model.QuestionType
		key   string
		want  any
	}{
		{"waiting months", "pre-existing diseases carry a waiting period of 36 months", model.TypeWaitingPeriod, "months", 36},
		{"ncd percentage", "NCD of 5% on the base premium", model.TypeNCD, "percentage", 5},
		{"room rent limit", "room rent capped at 1% of sum insured daily", model.TypeRoomRent, "limit_percentage", 1},
		{"coverage included", "the policy shall cover expenses", model.TypeCoverage, "coverage_type", "included"},
		{"maternity included", "maternity expenses are covered after two years", model.TypeMaternity, "maternity_coverage", "included"},
		{"surgery cue", "cataract surgery coverage applies after two years", model.TypeSurgery, "surgery_type", "cataract"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := extractDetails(tt.text, tt.qType)
			if got := details[tt.key]; got != tt.want {
				t.Errorf("details[%q] = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSimilarityRatio(t *testing.T) {
	if r := similarityRatio("grace period", "grace period"); r != 1.0 {
		t.Errorf("identical strings ratio = %v, want 1.0", r)
	}
	if r := similarityRatio("grace period", ""); r != 0.0 {
		t.Errorf("empty ratio = %v, want 0.0", r)
	}
	r := similarityRatio("grace period of 30 days", `grace period.*\d+.*days`)
	if r <= 0 || r >= 1 {
		t.Errorf("partial overlap ratio = %v, want within (0,1)", r)
	}
}
