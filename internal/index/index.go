package index

import (
	"context"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

// Hit is one ranked result from a vector index query.
type Hit struct {
	ID    string
	Score float64
	Chunk *model.DocumentChunk
}

// VectorIndex persists chunk vectors and supports similarity search.
// Insertion is append-only; there is no update or delete path. All inserts
// for a run must complete before the first search.
type VectorIndex interface {
	// Insert stores a vector with its chunk metadata
	Insert(ctx context.Context, id string, vector []float32, chunk *model.DocumentChunk) error

	// Search returns up to k hits ranked by descending similarity
	Search(ctx context.Context, vector []float32, k int) ([]Hit, error)

	// Len reports the number of indexed vectors
	Len() int

	// Name identifies the backend
	Name() string
}
