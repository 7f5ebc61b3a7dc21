package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Vaibhav-Uniyal/policyq/internal/cache"
	"github.com/Vaibhav-Uniyal/policyq/internal/chunker"
	"github.com/Vaibhav-Uniyal/policyq/internal/classify"
	"github.com/Vaibhav-Uniyal/policyq/internal/clause"
	"github.com/Vaibhav-Uniyal/policyq/internal/embed"
	"github.com/Vaibhav-Uniyal/policyq/internal/evaluate"
	"github.com/Vaibhav-Uniyal/policyq/internal/fetch"
	"github.com/Vaibhav-Uniyal/policyq/internal/index"
	"github.com/Vaibhav-Uniyal/policyq/internal/llm"
	"github.com/Vaibhav-Uniyal/policyq/internal/model"
	"github.com/Vaibhav-Uniyal/policyq/internal/respond"
	"github.com/Vaibhav-Uniyal/policyq/internal/retrieve"
	"github.com/Vaibhav-Uniyal/policyq/internal/trust"
	"github.com/Vaibhav-Uniyal/policyq/internal/worker"
)

// Pipeline wires the six stages together: fetch+chunk, classify, retrieve,
// match, evaluate, assemble. All collaborators are injected at construction
// and the pipeline holds no global state.
type Pipeline struct {
	fetcher    *fetch.Fetcher
	extractor  *fetch.Extractor
	chunker    *chunker.Chunker
	classifier *classify.Classifier
	retriever  *retrieve.Retriever
	matcher    *clause.Matcher
	evaluator  *evaluate.Evaluator
	trust      *trust.Classifier
	provider   llm.Provider
	embedder   embed.Embedder
	idx        index.VectorIndex
	config     *model.Config
}

// New builds a pipeline from configuration. The LLM provider is optional;
// without one, intent parsing and evaluation degrade to their fallbacks.
func New(ctx context.Context, cfg *model.Config) (*Pipeline, error) {
	var store cache.Cache = cache.Nop{}
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	baseEmbedder, err := embed.NewOpenAIEmbedder(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	var embedder embed.Embedder = baseEmbedder
	if cfg.Cache.Enabled {
		embedder = embed.NewCachedEmbedder(baseEmbedder, store)
	}

	var idx index.VectorIndex
	switch cfg.Index.Backend {
	case "", "memory":
		idx = index.NewMemoryIndex(cfg.Embedding.Dimension)
	case "postgres":
		idx, err = index.NewPostgresIndex(ctx, cfg.Index.PostgresURL, cfg.Index.Table, cfg.Embedding.Dimension)
		if err != nil {
			return nil, fmt.Errorf("postgres index: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}

	ch, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	return &Pipeline{
		fetcher:    fetch.NewFetcher(cfg.HTTP, store, cfg.Cache.DiskTTL),
		extractor:  fetch.NewExtractor(),
		chunker:    ch,
		classifier: classify.NewClassifier(provider, cfg.Concurrency.QuestionWorkers),
		retriever:  retrieve.New(embedder, idx, cfg.Retrieval.ShortlistK, cfg.Retrieval.TopK, cfg.Retrieval.MinCombinedScore),
		matcher:    clause.NewMatcher(cfg.Clauses.TopK, cfg.Clauses.MinRelevance),
		evaluator:  evaluate.NewEvaluator(provider),
		trust:      trust.NewClassifier(cfg.Trust),
		provider:   provider,
		embedder:   embedder,
		idx:        idx,
		config:     cfg,
	}, nil
}

func (p *Pipeline) metadata() model.ResponseMetadata {
	modelUsed := "none"
	if p.provider != nil {
		modelUsed = p.config.LLM.Model
	}
	return model.ResponseMetadata{
		RequestID:      uuid.NewString(),
		ModelUsed:      modelUsed,
		EmbeddingModel: p.config.Embedding.Model,
		VectorIndex:    p.idx.Name(),
	}
}

// Process answers questions against documents and returns the compact
// response. The response always carries one answer per question; a run
// that cannot produce anything yields the error shape plus the error.
func (p *Pipeline) Process(ctx context.Context, documents, questions []string) (model.QueryResponse, error) {
	meta := p.metadata()
	assembler := respond.NewAssembler(time.Now(), meta)
	log.Debug().Str("request_id", meta.RequestID).Int("documents", len(documents)).Int("questions", len(questions)).Msg("processing run")

	results, err := p.run(ctx, documents, questions)
	if err != nil {
		return assembler.ErrorCompact(len(questions)), err
	}
	return assembler.Compact(results), nil
}

// ProcessDetailed is Process with scoring detail and metadata attached.
func (p *Pipeline) ProcessDetailed(ctx context.Context, documents, questions []string) (model.DetailedResponse, error) {
	meta := p.metadata()
	assembler := respond.NewAssembler(time.Now(), meta)
	log.Debug().Str("request_id", meta.RequestID).Int("documents", len(documents)).Int("questions", len(questions)).Msg("processing run")

	results, err := p.run(ctx, documents, questions)
	if err != nil {
		return assembler.ErrorDetailed(len(questions)), err
	}
	return assembler.Detailed(results, questions), nil
}

// run executes the stages and returns one answer result per question.
func (p *Pipeline) run(ctx context.Context, documents, questions []string) ([]model.AnswerResult, error) {
	// Question classification and document chunking are independent, so
	// they overlap.
	classified := make(chan []model.ProcessedQuestion, 1)
	go func() {
		classified <- p.classifier.ProcessAll(ctx, questions)
	}()

	chunks, err := p.chunkDocuments(ctx, documents)
	processed := <-classified
	if err != nil {
		return nil, err
	}

	if err := p.retriever.IndexChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	// The first document's weight covers the whole batch; multi-document
	// weight assignment stays a single broadcast.
	documentWeight := p.config.Trust.KnownDocumentWeight
	if len(documents) > 0 {
		documentWeight = p.trust.Weight(documents[0])
	}

	outcomes := worker.Map(processed, p.config.Concurrency.QuestionWorkers, func(q model.ProcessedQuestion) (model.AnswerResult, error) {
		return p.answer(ctx, q, documentWeight), nil
	})

	results := make([]model.AnswerResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = o.Value
	}
	return results, nil
}

// answer runs retrieval, clause matching, and evaluation for one question.
// Failures degrade to the evaluator's fallback instead of propagating.
func (p *Pipeline) answer(ctx context.Context, question model.ProcessedQuestion, documentWeight float64) model.AnswerResult {
	hits, err := p.retriever.SearchByQuestion(ctx, question)
	if err != nil {
		log.Warn().Err(err).Str("question", question.OriginalQuestion).Msg("retrieval failed")
		return p.evaluator.Fallback(question, documentWeight)
	}

	matches := p.matcher.FindBestMatches(question, hits)
	return p.evaluator.Evaluate(ctx, question, matches, documentWeight)
}

// chunkDocuments fetches, extracts, and chunks all documents concurrently.
// A failing document is skipped; the run fails only when documents were
// given and none survived.
func (p *Pipeline) chunkDocuments(ctx context.Context, documents []string) ([]*model.DocumentChunk, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	outcomes := worker.Map(documents, p.config.Concurrency.DocumentWorkers, func(source string) ([]*model.DocumentChunk, error) {
		return p.chunkOne(ctx, source)
	})

	var chunks []*model.DocumentChunk
	failed := 0
	for i, o := range outcomes {
		if o.Err != nil {
			failed++
			log.Warn().Err(o.Err).Str("document", documents[i]).Msg("document processing failed")
			continue
		}
		chunks = append(chunks, o.Value...)
	}

	if failed == len(documents) {
		return nil, fmt.Errorf("all %d documents failed to process", failed)
	}

	log.Info().Int("documents", len(documents)-failed).Int("chunks", len(chunks)).Msg("documents chunked")
	return chunks, nil
}

func (p *Pipeline) chunkOne(ctx context.Context, source string) ([]*model.DocumentChunk, error) {
	doc, err := p.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	text, err := p.extractor.Extract(doc)
	if err != nil {
		return nil, err
	}

	split := p.chunker.Split(chunker.Normalize(text), source)
	chunks := make([]*model.DocumentChunk, len(split))
	for i := range split {
		chunks[i] = &split[i]
	}
	return chunks, nil
}

// Status reports component readiness and the active configuration. The
// context bounds the provider availability probe.
func (p *Pipeline) Status(ctx context.Context) model.SystemStatus {
	components := map[string]bool{
		"llm_provider": p.provider != nil && p.provider.IsAvailable(ctx),
		"embedder":     p.embedder != nil,
		"vector_index": p.idx != nil,
	}

	status := "operational"
	for _, ok := range components {
		if !ok {
			status = "degraded"
			break
		}
	}

	return model.SystemStatus{
		Status:     status,
		Components: components,
		Configuration: model.StatusConfig{
			LLMModel:              p.config.LLM.Model,
			EmbeddingModel:        p.config.Embedding.Model,
			VectorIndex:           p.idx.Name(),
			ChunkSize:             p.config.Chunking.Size,
			KnownDocumentWeight:   p.config.Trust.KnownDocumentWeight,
			UnknownDocumentWeight: p.config.Trust.UnknownDocumentWeight,
		},
	}
}
