package index

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

// PostgresIndex stores vectors in a pgvector-enabled Postgres table. Used
// when chunk pools should be shared across processes or runs.
type PostgresIndex struct {
	pool  *pgxpool.Pool
	table string
	count atomic.Int64
}

// NewPostgresIndex connects to Postgres and prepares the chunk table
func NewPostgresIndex(ctx context.Context, url, table string, dimension int) (*PostgresIndex, error) {
	if table == "" {
		table = "policyq_chunks"
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("enable pgvector: %w", err)
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		embedding vector(%d) NOT NULL,
		content TEXT NOT NULL,
		document_source TEXT NOT NULL,
		chunk_index INT NOT NULL,
		page_number INT NOT NULL DEFAULT 0
	)`, table, dimension)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create chunk table: %w", err)
	}

	idx := &PostgresIndex{pool: pool, table: table}

	var existing int64
	if err := pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&existing); err == nil {
		idx.count.Store(existing)
	}

	return idx, nil
}

// Name identifies the backend
func (p *PostgresIndex) Name() string { return "postgres" }

// Insert upserts a chunk vector
func (p *PostgresIndex) Insert(ctx context.Context, id string, vector []float32, chunk *model.DocumentChunk) error {
	query := fmt.Sprintf(`INSERT INTO %s (id, embedding, content, document_source, chunk_index, page_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, content = EXCLUDED.content`, p.table)

	_, err := p.pool.Exec(ctx, query,
		id, pgvector.NewVector(vector), chunk.Content, chunk.DocumentSource, chunk.ChunkIndex, chunk.PageNumber)
	if err != nil {
		return fmt.Errorf("insert chunk %s: %w", id, err)
	}
	p.count.Add(1)
	return nil
}

// Search runs a cosine-distance query and maps rows back to chunks
func (p *PostgresIndex) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if k <= 0 {
		k = 5
	}

	query := fmt.Sprintf(`SELECT id, content, document_source, chunk_index, page_number,
		1 - (embedding <=> $1) AS score
		FROM %s ORDER BY embedding <=> $1 LIMIT $2`, p.table)

	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var hit Hit
		chunk := &model.DocumentChunk{}
		if err := rows.Scan(&chunk.ID, &chunk.Content, &chunk.DocumentSource,
			&chunk.ChunkIndex, &chunk.PageNumber, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		hit.ID = chunk.ID
		hit.Chunk = chunk
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// Len reports the number of indexed vectors
func (p *PostgresIndex) Len() int {
	return int(p.count.Load())
}

// Close releases the connection pool
func (p *PostgresIndex) Close() {
	p.pool.Close()
}
