package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

// MemoryIndex is a brute-force cosine-similarity index. It is the default
// backend: a question batch indexes at most a few hundred chunks, where a
// linear scan beats any ANN structure.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	vectors   [][]float32
	chunks    []*model.DocumentChunk
}

// NewMemoryIndex creates an empty in-memory index
func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{dimension: dimension}
}

// Name identifies the backend
func (m *MemoryIndex) Name() string { return "memory" }

// Insert appends a vector and its chunk
func (m *MemoryIndex) Insert(ctx context.Context, id string, vector []float32, chunk *model.DocumentChunk) error {
	if m.dimension > 0 && len(vector) != m.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vector), m.dimension)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, id)
	m.vectors = append(m.vectors, vector)
	m.chunks = append(m.chunks, chunk)
	return nil
}

// Search scans all vectors and returns the top-k by cosine similarity.
// Equal scores keep insertion order.
func (m *MemoryIndex) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if k <= 0 {
		k = 5
	}

	hits := make([]Hit, 0, len(m.vectors))
	for i := range m.vectors {
		hits = append(hits, Hit{
			ID:    m.ids[i],
			Score: cosine(m.vectors[i], vector),
			Chunk: m.chunks[i],
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len reports the number of indexed vectors
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
