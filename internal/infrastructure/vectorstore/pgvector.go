package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgVectorStore persists chunk embeddings in Postgres using the pgvector
// extension. Rows are keyed by (run_id, chunk_id) so re-indexing a run is
// an upsert, not a duplicate.
type PgVectorStore struct {
	pool *pgxpool.Pool
}

// NewPgVectorStore connects to Postgres and ensures the schema exists.
func NewPgVectorStore(ctx context.Context, databaseURL string) (*PgVectorStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PgVectorStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PgVectorStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS chunk_embeddings (
			id BIGSERIAL PRIMARY KEY,
			run_id VARCHAR(128) NOT NULL,
			chunk_id VARCHAR(64) NOT NULL,
			start_seconds DOUBLE PRECISION NOT NULL,
			end_seconds DOUBLE PRECISION NOT NULL,
			text TEXT NOT NULL,
			speakers TEXT NOT NULL DEFAULT '',
			embedding vector(%d),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(run_id, chunk_id)
		)`, EmbeddingDim)
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create chunk_embeddings table: %w", err)
	}

	if _, err := s.pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_run ON chunk_embeddings(run_id)"); err != nil {
		return fmt.Errorf("create run index: %w", err)
	}
	return nil
}

func (s *PgVectorStore) Upsert(ctx context.Context, runID string, docs []Document) error {
	for _, d := range docs {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO chunk_embeddings (run_id, chunk_id, start_seconds, end_seconds, text, speakers, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (run_id, chunk_id)
			DO UPDATE SET
				start_seconds = EXCLUDED.start_seconds,
				end_seconds = EXCLUDED.end_seconds,
				text = EXCLUDED.text,
				speakers = EXCLUDED.speakers,
				embedding = EXCLUDED.embedding`,
			runID, d.ChunkID, d.Start, d.End, d.Text, strings.Join(d.Speakers, ","), pgvector.NewVector(d.Embedding))
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", d.ChunkID, err)
		}
	}
	return nil
}

func (s *PgVectorStore) Search(ctx context.Context, runID string, vector []float32, topK int, window *TimeWindow) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	query := `
		SELECT chunk_id, start_seconds, end_seconds, text, speakers,
		       1 - (embedding <=> $1) AS similarity
		FROM chunk_embeddings
		WHERE run_id = $2`
	args := []any{pgvector.NewVector(vector), runID}
	if window != nil {
		query += " AND end_seconds >= $3 AND start_seconds <= $4"
		args = append(args, window.Min, window.Max)
	}
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT %d", topK)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r        SearchResult
			speakers string
			score    float64
		)
		if err := rows.Scan(&r.ChunkID, &r.Start, &r.End, &r.Text, &speakers, &score); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		if speakers != "" {
			r.Speakers = strings.Split(speakers, ",")
		}
		r.Score = float32(score)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PgVectorStore) Count(ctx context.Context, runID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM chunk_embeddings WHERE run_id = $1", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

func (s *PgVectorStore) Drop(ctx context.Context, runID string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM chunk_embeddings WHERE run_id = $1", runID); err != nil {
		return fmt.Errorf("drop run %s: %w", runID, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PgVectorStore) Close() error {
	s.pool.Close()
	return nil
}
