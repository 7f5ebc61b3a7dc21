package embed

import (
	"context"
	"encoding/json"

	"github.com/Vaibhav-Uniyal/policyq/internal/cache"
)

// CachedEmbedder decorates an Embedder with a content-addressed cache so
// repeat runs over the same documents skip the embedding API entirely.
type CachedEmbedder struct {
	inner Embedder
	store cache.Cache
}

// NewCachedEmbedder wraps an embedder with the given cache
func NewCachedEmbedder(inner Embedder, store cache.Cache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: store}
}

// Name returns the inner embedder name
func (e *CachedEmbedder) Name() string { return e.inner.Name() }

// Dimension returns the inner embedder dimension
func (e *CachedEmbedder) Dimension() int { return e.inner.Dimension() }

// Embed returns a cached vector when available
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key("embed:" + e.inner.Name() + ":" + text)
	if data, found := e.store.Get(key); found {
		var vec []float32
		if json.Unmarshal(data, &vec) == nil {
			return vec, nil
		}
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(vec); err == nil {
		_ = e.store.Set(key, data, 0)
	}
	return vec, nil
}

// EmbedBatch serves cached vectors and embeds only the misses, in one call
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		key := cache.Key("embed:" + e.inner.Name() + ":" + text)
		if data, found := e.store.Get(key); found {
			var vec []float32
			if json.Unmarshal(data, &vec) == nil {
				vectors[i] = vec
				continue
			}
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range fresh {
		i := missIdx[j]
		vectors[i] = vec
		key := cache.Key("embed:" + e.inner.Name() + ":" + texts[i])
		if data, err := json.Marshal(vec); err == nil {
			_ = e.store.Set(key, data, 0)
		}
	}
	return vectors, nil
}
