package content

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/internal/infrastructure/vectorstore"
)

// axisEmbedder maps each distinct text to its own axis, so identical texts
// score 1.0 and all other pairs score 0.
type axisEmbedder struct {
	axes map[string]int
	next int
}

func (e *axisEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	if e.axes == nil {
		e.axes = make(map[string]int)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		axis, ok := e.axes[t]
		if !ok {
			axis = e.next
			e.axes[t] = axis
			e.next++
		}
		v := make([]float32, 64)
		v[axis%64] = 1
		out[i] = v
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedTexts(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embedding service unavailable")
}

func indexChunks() []entities.TranscriptChunk {
	chunks := make([]entities.TranscriptChunk, 6)
	for i := range chunks {
		chunks[i] = entities.TranscriptChunk{
			ID:    fmt.Sprintf("run1-chunk-%04d", i),
			Text:  fmt.Sprintf("segment %d filler words here", i),
			Start: float64(i * 100),
			End:   float64(i*100 + 90),
		}
	}
	chunks[3].Text = "the guest explains gradient descent"
	return chunks
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := NewIndex(vectorstore.NewMemoryStore(), nil, "run1", testPipelineConfig(), nil)
	if err := ix.Build(context.Background(), nil); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !ix.Empty() {
		t.Error("Empty() = false for empty index")
	}

	got, err := ix.Search(context.Background(), RetrievalQuery{Text: "anything"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestSearchRanksExactMatchFirst(t *testing.T) {
	ix := NewIndex(vectorstore.NewMemoryStore(), &axisEmbedder{}, "run1", testPipelineConfig(), nil)
	if err := ix.Build(context.Background(), indexChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := ix.Search(context.Background(), RetrievalQuery{
		Text: "the guest explains gradient descent",
		TopK: 3,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected results")
	}
	if len(got) > 3 {
		t.Errorf("topK not applied: got %d results", len(got))
	}
	if got[0].ID != "run1-chunk-0003" {
		t.Errorf("top result = %s, want run1-chunk-0003", got[0].ID)
	}
}

func TestSearchTimeRangePreFilter(t *testing.T) {
	ix := NewIndex(vectorstore.NewMemoryStore(), &axisEmbedder{}, "run1", testPipelineConfig(), nil)
	if err := ix.Build(context.Background(), indexChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	// The best-matching chunk (300-390s) lies outside the window; it must be
	// excluded before ranking, not demoted.
	got, err := ix.Search(context.Background(), RetrievalQuery{
		Text:      "the guest explains gradient descent",
		TimeRange: &entities.TimeRange{Min: 0, Max: 250},
		TopK:      10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range got {
		if r.Start > 250 {
			t.Errorf("chunk %s (start %.0f) outside the time window", r.ID, r.Start)
		}
	}

	// A window covering no chunks is a valid empty result.
	empty, err := ix.Search(context.Background(), RetrievalQuery{
		Text:      "anything",
		TimeRange: &entities.TimeRange{Min: 5000, Max: 6000},
	})
	if err != nil {
		t.Fatalf("Search with non-overlapping window: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty result for non-overlapping window, got %d", len(empty))
	}
}

func TestBuildDegradesToLexicalOnEmbedderFailure(t *testing.T) {
	ix := NewIndex(vectorstore.NewMemoryStore(), failingEmbedder{}, "run1", testPipelineConfig(), nil)
	if err := ix.Build(context.Background(), indexChunks()); err != nil {
		t.Fatalf("Build must not fail when embeddings are unavailable: %v", err)
	}

	got, err := ix.Search(context.Background(), RetrievalQuery{
		Text: "guest explains gradient descent",
		TopK: 2,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != "run1-chunk-0003" {
		t.Errorf("lexical top result = %s, want run1-chunk-0003", got[0].ID)
	}
}

func TestSearchRunIsolation(t *testing.T) {
	store := vectorstore.NewMemoryStore()

	ixA := NewIndex(store, &axisEmbedder{}, "runA", testPipelineConfig(), nil)
	if err := ixA.Build(context.Background(), indexChunks()); err != nil {
		t.Fatalf("Build runA: %v", err)
	}

	ixB := NewIndex(store, &axisEmbedder{}, "runB", testPipelineConfig(), nil)
	if err := ixB.Build(context.Background(), []entities.TranscriptChunk{
		{ID: "runB-chunk-0000", Text: "different episode entirely", Start: 0, End: 50},
	}); err != nil {
		t.Fatalf("Build runB: %v", err)
	}

	got, err := ixB.Search(context.Background(), RetrievalQuery{Text: "different episode entirely", TopK: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range got {
		if r.ID != "runB-chunk-0000" {
			t.Errorf("run isolation violated: got chunk %s from another run", r.ID)
		}
	}
}
