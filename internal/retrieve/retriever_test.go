package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Vaibhav-Uniyal/policyq/internal/index"
	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

// keywordEmbedder maps keyword presence onto fixed axes so similarity is
// predictable without a real embedding model.
type keywordEmbedder struct {
	err error
}

func (e *keywordEmbedder) Name() string   { return "keyword" }
func (e *keywordEmbedder) Dimension() int { return 3 }

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	lowered := strings.ToLower(text)
	v := []float32{0, 0, 0.1}
	if strings.Contains(lowered, "grace") {
		v[0] = 1
	}
	if strings.Contains(lowered, "maternity") {
		v[1] = 1
	}
	return v, nil
}

func (e *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

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

func chunk(id, content string) *model.DocumentChunk {
	return &model.DocumentChunk{ID: id, Content: content, DocumentSource: "doc"}
}

func TestSearchByQuestionRanksAndFilters(t *testing.T) {
	r := New(&keywordEmbedder{}, index.NewMemoryIndex(3), 10, 5, 0.3)

	chunks := []*model.DocumentChunk{
		chunk("doc_0", "A grace period of 30 days is allowed for payment of renewal premium"),
		chunk("doc_1", "Maternity expenses are covered after a waiting period of 24 months"),
	}
	if err := r.IndexChunks(context.Background(), chunks); err != nil {
		t.Fatalf("IndexChunks: %v", err)
	}
	if chunks[0].Embedding == nil {
		t.Fatal("embedding not stored on chunk")
	}

	results, err := r.SearchByQuestion(context.Background(), graceQuestion())
	if err != nil {
		t.Fatalf("SearchByQuestion: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	got := results[0]
	if got.Chunk.ID != "doc_0" {
		t.Errorf("top chunk = %s, want doc_0", got.Chunk.ID)
	}
	if got.RelevanceScore <= 0.3 {
		t.Errorf("relevance %v should exceed threshold", got.RelevanceScore)
	}
	if got.SimilarityScore <= 0 {
		t.Errorf("similarity %v should be positive", got.SimilarityScore)
	}
}

func TestSearchByQuestionTruncatesTopK(t *testing.T) {
	r := New(&keywordEmbedder{}, index.NewMemoryIndex(3), 10, 5, 0.3)

	var chunks []*model.DocumentChunk
	for i := 0; i < 8; i++ {
		chunks = append(chunks, chunk(
			fmt.Sprintf("doc_%d", i),
			fmt.Sprintf("Clause %d: the grace period for premium payment is 30 days", i),
		))
	}
	if err := r.IndexChunks(context.Background(), chunks); err != nil {
		t.Fatalf("IndexChunks: %v", err)
	}

	results, err := r.SearchByQuestion(context.Background(), graceQuestion())
	if err != nil {
		t.Fatalf("SearchByQuestion: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("got %d results, want top 5", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].RelevanceScore > results[i-1].RelevanceScore {
			t.Errorf("results not sorted at %d", i)
		}
	}
}

func TestSearchByQuestionEmptyIndex(t *testing.T) {
	r := New(&keywordEmbedder{}, index.NewMemoryIndex(3), 10, 5, 0.3)

	results, err := r.SearchByQuestion(context.Background(), graceQuestion())
	if err != nil {
		t.Fatalf("expected no error on empty index, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want none", len(results))
	}
}

func TestSearchByQuestionEmbedError(t *testing.T) {
	r := New(&keywordEmbedder{err: errors.New("quota exceeded")},
		index.NewMemoryIndex(3), 10, 5, 0.3)

	// Populate the index directly so the search path reaches the embedder.
	c := chunk("doc_0", "grace period clause")
	if err := r.index.Insert(context.Background(), c.ID, []float32{1, 0, 0}, c); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if _, err := r.SearchByQuestion(context.Background(), graceQuestion()); err == nil {
		t.Fatal("expected embedding error to propagate")
	}
}

func TestBuildQuery(t *testing.T) {
	q := buildQuery(graceQuestion())
	if !strings.Contains(q, "What is the grace period for premium payment?") {
		t.Errorf("query missing original question: %q", q)
	}
	if !strings.Contains(q, "grace period premium payment") {
		t.Errorf("query missing extracted terms: %q", q)
	}

	bare := buildQuery(model.ProcessedQuestion{OriginalQuestion: "anything"})
	if bare != "anything" {
		t.Errorf("bare query = %q, want question only", bare)
	}
}

func TestTermOverlap(t *testing.T) {
	content := "The grace period is thirty days from the premium due date"
	if got := termOverlap(content, []string{"grace", "period", "premium", "payment"}); got != 0.75 {
		t.Errorf("overlap = %v, want 0.75", got)
	}
	if got := termOverlap(content, nil); got != 0 {
		t.Errorf("overlap with no terms = %v, want 0", got)
	}
}
