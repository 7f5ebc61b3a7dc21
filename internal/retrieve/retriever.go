package retrieve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Vaibhav-Uniyal/policyq/internal/embed"
	"github.com/Vaibhav-Uniyal/policyq/internal/index"
	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

// Retriever embeds chunks into a vector index and answers question-shaped
// searches with a combined similarity/term-overlap score.
type Retriever struct {
	embedder  embed.Embedder
	index     index.VectorIndex
	shortlist int
	topK      int
	threshold float64
}

// New creates a retriever over the given embedder and index.
func New(embedder embed.Embedder, idx index.VectorIndex, shortlist, topK int, threshold float64) *Retriever {
	return &Retriever{
		embedder:  embedder,
		index:     idx,
		shortlist: shortlist,
		topK:      topK,
		threshold: threshold,
	}
}

// IndexChunks embeds all chunks in one batch and inserts them. Chunks keep
// their embeddings so callers can reuse them.
func (r *Retriever) IndexChunks(ctx context.Context, chunks []*model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	for i, chunk := range chunks {
		chunk.Embedding = embeddings[i]
		if err := r.index.Insert(ctx, chunk.ID, chunk.Embedding, chunk); err != nil {
			return fmt.Errorf("index chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// SearchByQuestion retrieves chunks relevant to a processed question. The
// shortlist comes from vector similarity; each hit is then rescored as the
// mean of similarity and verbatim term overlap, filtered and truncated.
// An empty index yields no results, not an error.
func (r *Retriever) SearchByQuestion(ctx context.Context, question model.ProcessedQuestion) ([]model.SearchResult, error) {
	if r.index.Len() == 0 {
		return nil, nil
	}

	queryVec, err := r.embedder.Embed(ctx, buildQuery(question))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, queryVec, r.shortlist)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	var results []model.SearchResult
	for _, hit := range hits {
		combined := (hit.Score + termOverlap(hit.Chunk.Content, question.ExtractedTerms)) / 2
		if combined <= r.threshold {
			continue
		}
		results = append(results, model.SearchResult{
			Chunk:           hit.Chunk,
			SimilarityScore: hit.Score,
			RelevanceScore:  combined,
		})
	}

	// Stable keeps shortlist (similarity) order among equal combined scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if len(results) > r.topK {
		results = results[:r.topK]
	}
	return results, nil
}

// buildQuery concatenates the question with its extracted terms and intent
// vocabulary, skipping empty parts.
func buildQuery(question model.ProcessedQuestion) string {
	parts := []string{
		question.OriginalQuestion,
		strings.Join(question.ExtractedTerms, " "),
		strings.Join(question.Intent.Entities, " "),
		strings.Join(question.Intent.SpecificTerms, " "),
	}

	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// termOverlap is the fraction of terms appearing verbatim (case-insensitive)
// in the content; no terms means no overlap credit.
func termOverlap(content string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lowered := strings.ToLower(content)
	hits := 0
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
