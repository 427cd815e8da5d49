package vectorstore

import (
	"context"
	"testing"
)

func doc(id string, start, end float64, v []float32) Document {
	return Document{ChunkID: id, Text: "text " + id, Start: start, End: end, Embedding: v}
}

func TestMemoryStoreUpsertAndSearch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	docs := []Document{
		doc("chunk_0000", 0, 60, []float32{1, 0, 0}),
		doc("chunk_0001", 60, 120, []float32{0, 1, 0}),
		doc("chunk_0002", 120, 180, []float32{0.9, 0.1, 0}),
	}
	if err := s.Upsert(ctx, "run-a", docs); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	count, err := s.Count(ctx, "run-a")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 documents, got %d", count)
	}

	results, err := s.Search(ctx, "run-a", []float32{1, 0, 0}, 2, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ChunkID != "chunk_0000" {
		t.Errorf("expected chunk_0000 first, got %s", results[0].ChunkID)
	}
	if results[1].ChunkID != "chunk_0002" {
		t.Errorf("expected chunk_0002 second, got %s", results[1].ChunkID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("results not ordered by score: %f <= %f", results[0].Score, results[1].Score)
	}
}

func TestMemoryStoreRunIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, "run-a", []Document{doc("chunk_0000", 0, 60, []float32{1, 0})}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert(ctx, "run-b", []Document{doc("chunk_0000", 0, 60, []float32{0, 1})}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	results, err := s.Search(ctx, "run-b", []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Score > 0.01 {
		t.Errorf("run-b document should not match run-a vector, score %f", results[0].Score)
	}

	if err := s.Drop(ctx, "run-a"); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	count, _ := s.Count(ctx, "run-a")
	if count != 0 {
		t.Errorf("expected run-a to be empty after drop, got %d", count)
	}
	count, _ = s.Count(ctx, "run-b")
	if count != 1 {
		t.Errorf("drop of run-a should not touch run-b, got %d", count)
	}
}

func TestMemoryStoreTimeWindow(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	docs := []Document{
		doc("chunk_0000", 0, 60, []float32{1, 0}),
		doc("chunk_0001", 60, 120, []float32{1, 0}),
		doc("chunk_0002", 120, 180, []float32{1, 0}),
	}
	if err := s.Upsert(ctx, "run-a", docs); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	window := &TimeWindow{Min: 70, Max: 110}
	results, err := s.Search(ctx, "run-a", []float32{1, 0}, 5, window)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result inside window, got %d", len(results))
	}
	if results[0].ChunkID != "chunk_0001" {
		t.Errorf("expected chunk_0001, got %s", results[0].ChunkID)
	}

	// A window touching a chunk boundary includes that chunk.
	boundary := &TimeWindow{Min: 180, Max: 200}
	results, err = s.Search(ctx, "run-a", []float32{1, 0}, 5, boundary)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "chunk_0002" {
		t.Errorf("expected boundary window to include chunk_0002, got %v", results)
	}
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, "run-a", []Document{doc("chunk_0000", 0, 60, []float32{1, 0})}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert(ctx, "run-a", []Document{doc("chunk_0000", 0, 90, []float32{0, 1})}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	count, _ := s.Count(ctx, "run-a")
	if count != 1 {
		t.Fatalf("expected 1 document after re-upsert, got %d", count)
	}
	results, _ := s.Search(ctx, "run-a", []float32{0, 1}, 1, nil)
	if results[0].End != 90 {
		t.Errorf("re-upsert did not replace document, end=%f", results[0].End)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors should score ~1, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors should score 0, got %f", got)
	}
	if got := cosineSimilarity(nil, []float32{1}); got != 0 {
		t.Errorf("empty vector should score 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths should score 0, got %f", got)
	}
}
