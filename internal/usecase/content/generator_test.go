package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/internal/infrastructure/vectorstore"
)

// scriptedModel routes prompts to canned responses by matching on the system
// prompt. respond may be replaced per test.
type scriptedModel struct {
	respond func(systemPrompt, userPrompt string) (string, error)
	calls   int
}

func (m *scriptedModel) ChatJSON(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	return m.respond(systemPrompt, userPrompt)
}

func lexicalIndex(t *testing.T, chunks []entities.TranscriptChunk) *Index {
	t.Helper()
	ix := NewIndex(vectorstore.NewMemoryStore(), nil, "test-run", testPipelineConfig(), nil)
	if err := ix.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return ix
}

func TestQuotableMomentsRangeViolation(t *testing.T) {
	chunks := []entities.TranscriptChunk{{
		ID:    "chunk_0000",
		Text:  "an impactful statement worth quoting",
		Start: 10,
		End:   20,
	}}
	index := lexicalIndex(t, chunks)

	// The model claims 45s for a chunk bounded [10,20]s.
	model := &scriptedModel{respond: func(_, _ string) (string, error) {
		return `{"quote": "an impactful statement", "timestamp": 45}`, nil
	}}
	g := NewGenerators(model, testPipelineConfig(), nil)

	claims, violations, err := g.QuotableMoments(context.Background(), entities.EpisodeInfo{}, index)
	if err != nil {
		t.Fatalf("QuotableMoments failed: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("out-of-range claim must be rejected, got %d claims", len(claims))
	}
	if violations != 1 {
		t.Errorf("violations = %d, want 1", violations)
	}
}

func TestRangeViolationNeverReachesVerifier(t *testing.T) {
	cfg := testPipelineConfig()
	chunks := []entities.TranscriptChunk{{ID: "chunk_0000", Text: "impactful statement", Start: 10, End: 20}}
	index := lexicalIndex(t, chunks)

	model := &scriptedModel{respond: func(_, _ string) (string, error) {
		return `{"quote": "impactful statement", "timestamp": 45}`, nil
	}}
	g := NewGenerators(model, cfg, nil)
	rc := NewReflectionController(NewCritic(cfg), cfg, nil)

	verifyCalls := 0
	verify := func(claim entities.GeneratedClaim) entities.VerificationVerdict {
		verifyCalls++
		return entities.VerificationVerdict{ClaimID: claim.ID, Status: entities.VerdictAccurate}
	}
	generate := func(ctx context.Context, iteration int, repairs []entities.RepairAction) ([]entities.GeneratedClaim, error) {
		claims, _, err := g.QuotableMoments(ctx, entities.EpisodeInfo{}, index)
		return claims, err
	}

	outcome, err := rc.Run(context.Background(), entities.ClaimKindQuote, generate, verify)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if verifyCalls != 0 {
		t.Errorf("verification called %d times for a range-violating claim, want 0", verifyCalls)
	}
	if !outcome.Approved {
		t.Errorf("zero surviving claims should be approved as an empty sub-task")
	}
}

func TestQuotableMomentsValidClaim(t *testing.T) {
	chunks := []entities.TranscriptChunk{{
		ID:    "chunk_0003",
		Text:  "an impactful statement worth quoting",
		Start: 100,
		End:   160,
	}}
	index := lexicalIndex(t, chunks)

	model := &scriptedModel{respond: func(_, userPrompt string) (string, error) {
		if !strings.Contains(userPrompt, "00:01:40 - 00:02:40") {
			t.Errorf("user prompt missing chunk time range: %q", userPrompt)
		}
		return `{"quote": "an impactful statement", "timestamp": "00:02:05", "speaker": "A"}`, nil
	}}
	g := NewGenerators(model, testPipelineConfig(), nil)

	claims, violations, err := g.QuotableMoments(context.Background(), entities.EpisodeInfo{}, index)
	if err != nil {
		t.Fatalf("QuotableMoments failed: %v", err)
	}
	if violations != 0 {
		t.Errorf("violations = %d, want 0", violations)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if claims[0].Quote.ClaimedSeconds != 125 {
		t.Errorf("claimed seconds = %f, want 125", claims[0].Quote.ClaimedSeconds)
	}
	if claims[0].SupportingChunkID != "chunk_0003" {
		t.Errorf("supporting chunk = %s, want chunk_0003", claims[0].SupportingChunkID)
	}
}

func TestQuotableMomentsEmptyIndex(t *testing.T) {
	index := lexicalIndex(t, nil)
	model := &scriptedModel{respond: func(_, _ string) (string, error) {
		t.Fatal("model must not be called for an empty index")
		return "", nil
	}}
	g := NewGenerators(model, testPipelineConfig(), nil)

	claims, _, err := g.QuotableMoments(context.Background(), entities.EpisodeInfo{}, index)
	if err != nil {
		t.Fatalf("empty index must yield zero claims, not an error: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("expected no claims, got %d", len(claims))
	}
}

func TestQuotableMomentsAllCallsFailed(t *testing.T) {
	chunks := []entities.TranscriptChunk{{ID: "chunk_0000", Text: "impactful statement", Start: 0, End: 60}}
	index := lexicalIndex(t, chunks)

	model := &scriptedModel{respond: func(_, _ string) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}}
	g := NewGenerators(model, testPipelineConfig(), nil)

	_, _, err := g.QuotableMoments(context.Background(), entities.EpisodeInfo{}, index)
	if !errors.Is(err, entities.ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestReelSuggestionsRangeViolation(t *testing.T) {
	chunks := []entities.TranscriptChunk{{ID: "chunk_0000", Text: "dramatic emotional segment", Start: 100, End: 200}}
	index := lexicalIndex(t, chunks)

	model := &scriptedModel{respond: func(_, _ string) (string, error) {
		// End reaches past the chunk.
		return `{"title": "clip", "start_time": 150, "end_time": 230}`, nil
	}}
	g := NewGenerators(model, testPipelineConfig(), nil)

	claims, violations, err := g.ReelSuggestions(context.Background(), entities.EpisodeInfo{}, index)
	if err != nil {
		t.Fatalf("ReelSuggestions failed: %v", err)
	}
	if len(claims) != 0 || violations != 1 {
		t.Errorf("claims=%d violations=%d, want 0 and 1", len(claims), violations)
	}
}

func TestChapterTimestampsOrderAndConcurrency(t *testing.T) {
	chunks := []entities.TranscriptChunk{
		{ID: "chunk_0000", Text: "intro greetings welcome", Start: 0, End: 120},
		{ID: "chunk_0001", Text: "startup funding money", Start: 120, End: 240},
		{ID: "chunk_0002", Text: "hiring culture teams", Start: 240, End: 360},
	}
	index := lexicalIndex(t, chunks)

	model := &scriptedModel{respond: func(systemPrompt, userPrompt string) (string, error) {
		// Answer with the start of the first retrieved segment.
		start := strings.Index(userPrompt, "[")
		if start < 0 {
			return "", fmt.Errorf("no segment in prompt")
		}
		return fmt.Sprintf(`{"timestamp": "%s"}`, userPrompt[start+1:start+9]), nil
	}}
	g := NewGenerators(model, testPipelineConfig(), nil)

	titles := []string{"intro greetings", "startup funding", "hiring culture"}
	claims, violations, err := g.ChapterTimestamps(context.Background(), entities.EpisodeInfo{}, titles, index)
	if err != nil {
		t.Fatalf("ChapterTimestamps failed: %v", err)
	}
	if violations != 0 {
		t.Errorf("violations = %d, want 0", violations)
	}
	if len(claims) != 3 {
		t.Fatalf("expected 3 chapter claims, got %d", len(claims))
	}
	// Claims come back in title order regardless of completion order.
	for i, want := range titles {
		if claims[i].Chapter.Title != want {
			t.Errorf("claim %d title = %q, want %q", i, claims[i].Chapter.Title, want)
		}
	}
	if claims[0].Chapter.ClaimedSeconds != 0 {
		t.Errorf("first chapter at %f, want 0", claims[0].Chapter.ClaimedSeconds)
	}
}

func TestChapterTitlesGenerationFailed(t *testing.T) {
	model := &scriptedModel{respond: func(_, _ string) (string, error) {
		return "not json at all", nil
	}}
	g := NewGenerators(model, testPipelineConfig(), nil)

	_, err := g.ChapterTitles(context.Background(), entities.EpisodeInfo{}, "transcript")
	if !errors.Is(err, entities.ErrGenerationFailed) {
		t.Errorf("expected ErrGenerationFailed for malformed output, got %v", err)
	}
}

func TestContentWarnings(t *testing.T) {
	chunks := []entities.TranscriptChunk{{ID: "chunk_0000", Text: "some strong language here", Start: 0, End: 60}}
	index := lexicalIndex(t, chunks)

	model := &scriptedModel{respond: func(systemPrompt, _ string) (string, error) {
		if !strings.Contains(systemPrompt, "flag") {
			t.Errorf("unexpected system prompt: %q", systemPrompt)
		}
		return "```json\n{\"warnings\": [\"strong language\"]}\n```", nil
	}}
	g := NewGenerators(model, testPipelineConfig(), nil)

	warnings, err := g.ContentWarnings(context.Background(), entities.EpisodeInfo{}, index)
	if err != nil {
		t.Fatalf("ContentWarnings failed: %v", err)
	}
	if len(warnings) != 1 || warnings[0] != "strong language" {
		t.Errorf("warnings = %v, want [strong language]", warnings)
	}
}
