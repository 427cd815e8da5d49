package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used in tests and single-node
// deployments. Vectors are compared by cosine similarity.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document // runID -> chunkID -> doc
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]Document)}
}

func (s *MemoryStore) Upsert(_ context.Context, runID string, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.docs[runID]
	if !ok {
		run = make(map[string]Document, len(docs))
		s.docs[runID] = run
	}
	for _, d := range docs {
		run[d.ChunkID] = d
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, runID string, vector []float32, topK int, window *TimeWindow) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := s.docs[runID]
	if len(run) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 5
	}

	results := make([]SearchResult, 0, len(run))
	for _, d := range run {
		if window != nil && !window.Overlaps(d.Start, d.End) {
			continue
		}
		results = append(results, SearchResult{Document: d, Score: cosineSimilarity(vector, d.Embedding)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) Count(_ context.Context, runID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[runID]), nil
}

func (s *MemoryStore) Drop(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, runID)
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
