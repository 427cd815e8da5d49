package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/podflow-team/podflow/pkg/config"
)

// EmbeddingDim is the dimensionality of stored vectors. Matches the
// text-embedding-3-small output size.
const EmbeddingDim = 1536

// Document is a transcript chunk prepared for indexing.
type Document struct {
	ChunkID   string
	Text      string
	Start     float64
	End       float64
	Speakers  []string
	Embedding []float32
}

// SearchResult is a retrieved document with its similarity score.
type SearchResult struct {
	Document
	Score float32
}

// TimeWindow restricts a search to documents overlapping [Min, Max] seconds.
type TimeWindow struct {
	Min float64
	Max float64
}

// Overlaps reports whether a document spanning [start, end] intersects the window.
func (w TimeWindow) Overlaps(start, end float64) bool {
	return end >= w.Min && start <= w.Max
}

// Store is the retrieval index backend. Documents are isolated per run so
// concurrent pipeline runs never see each other's chunks.
type Store interface {
	// Upsert indexes documents under the given run. Re-upserting a chunk id
	// replaces the previous document.
	Upsert(ctx context.Context, runID string, docs []Document) error

	// Search returns the topK most similar documents for the query vector,
	// optionally restricted to a time window.
	Search(ctx context.Context, runID string, vector []float32, topK int, window *TimeWindow) ([]SearchResult, error)

	// Count returns the number of documents indexed under the run.
	Count(ctx context.Context, runID string) (int, error)

	// Drop removes all documents for the run.
	Drop(ctx context.Context, runID string) error
}

// New selects a store backend from config. Unknown backends fall back to the
// in-memory store with a warning, so a misconfigured deployment still serves.
func New(cfg *config.VectorStoreConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "pgvector":
		s, err := NewPgVectorStore(context.Background(), cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize pgvector store: %w", err)
		}
		return s, nil
	case "milvus":
		s, err := NewMilvusStore(context.Background(), cfg.MilvusAddr)
		if err != nil {
			return nil, fmt.Errorf("initialize milvus store: %w", err)
		}
		return s, nil
	default:
		logger.Warn("unknown vector store backend, using memory store", zap.String("backend", backend))
		return NewMemoryStore(), nil
	}
}
