package content

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/pkg/config"
)

// Embedder produces one embedding vector per input text. Both the chunker and
// the retrieval index take it as an injected capability; a nil embedder is a
// supported mode, not an error.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Chunker splits the word sequence into overlapping, bounded-size chunks.
// When an embedder is available, boundaries prefer points of semantic
// discontinuity between speaker turns; otherwise fixed-size windowing on
// speaker and sentence boundaries applies. Both modes are deterministic for
// identical inputs.
type Chunker struct {
	embedder Embedder
	target   int
	max      int
	overlap  float64
	logger   *zap.Logger
}

// NewChunker creates a chunker from pipeline config. Embedder and logger may
// be nil.
func NewChunker(embedder Embedder, cfg *config.PipelineConfig, logger *zap.Logger) *Chunker {
	if logger == nil {
		logger = zap.NewNop()
	}

	target := cfg.ChunkTargetTokens
	if target <= 0 {
		target = 300
	}
	max := cfg.ChunkMaxTokens
	if max < target {
		max = target * 4 / 3
	}
	overlap := cfg.ChunkOverlapFraction
	if overlap <= 0 {
		overlap = 0.15
	}

	return &Chunker{
		embedder: embedder,
		target:   target,
		max:      max,
		overlap:  overlap,
		logger:   logger,
	}
}

// estimateTokens approximates the token count for a word count. Subword
// tokenizers average roughly 4 tokens per 3 words across the languages we see.
func estimateTokens(wordCount int) int {
	return (wordCount*4 + 2) / 3
}

// wordsForTokens inverts estimateTokens.
func wordsForTokens(tokens int) int {
	n := tokens * 3 / 4
	if n < 1 {
		n = 1
	}
	return n
}

// Chunk splits the transcript into chunks. An empty transcript yields an
// empty sequence, not an error.
func (c *Chunker) Chunk(ctx context.Context, words []entities.TranscriptWord) ([]entities.TranscriptChunk, error) {
	if len(words) == 0 {
		return []entities.TranscriptChunk{}, nil
	}

	boundaries := preferredBoundaries(words)
	scores := c.semanticScores(ctx, words)

	targetWords := wordsForTokens(c.target)
	maxWords := wordsForTokens(c.max)

	chunks := make([]entities.TranscriptChunk, 0, len(words)/targetWords+1)
	start := 0
	for start < len(words) {
		end := start + targetWords
		if end >= len(words) {
			end = len(words)
		} else {
			limit := start + maxWords
			if limit > len(words) {
				limit = len(words)
			}
			end = pickBoundary(boundaries, scores, end, limit)
		}

		chunks = append(chunks, buildChunk(len(chunks), words, start, end))
		if end >= len(words) {
			break
		}

		overlapWords := int(float64(end-start) * c.overlap)
		next := end - overlapWords
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks, nil
}

// preferredBoundaries marks word indexes where a chunk may cleanly start: a
// speaker change or the word after sentence-ending punctuation.
func preferredBoundaries(words []entities.TranscriptWord) []bool {
	boundaries := make([]bool, len(words))
	for i := 1; i < len(words); i++ {
		if words[i].Speaker != words[i-1].Speaker {
			boundaries[i] = true
			continue
		}
		prev := words[i-1].Text
		if strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "!") || strings.HasSuffix(prev, "?") {
			boundaries[i] = true
		}
	}
	return boundaries
}

// semanticScores returns, per word index that begins a speaker turn, the
// embedding distance to the previous turn. Nil when embeddings are
// unavailable, which silently selects the fixed windowing mode.
func (c *Chunker) semanticScores(ctx context.Context, words []entities.TranscriptWord) map[int]float64 {
	if c.embedder == nil {
		return nil
	}

	utterances := entities.GroupWordsBySpeaker(words)
	if len(utterances) < 2 {
		return nil
	}

	texts := make([]string, len(utterances))
	for i, u := range utterances {
		texts[i] = u.Text
	}
	vectors, err := c.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		c.logger.Warn("embedding unavailable, chunking with fixed windows", zap.Error(err))
		return nil
	}
	if len(vectors) != len(utterances) {
		return nil
	}

	// Map each utterance start back to its word index.
	scores := make(map[int]float64)
	utt := 0
	for i := 1; i < len(words); i++ {
		if words[i].Speaker != words[i-1].Speaker {
			utt++
			if utt < len(vectors) {
				scores[i] = 1 - float64(cosine32(vectors[utt-1], vectors[utt]))
			}
		}
	}
	return scores
}

// pickBoundary selects the cut point in [from, limit]. With semantic scores
// it is the highest-discontinuity preferred boundary; otherwise the first
// preferred boundary; otherwise limit (hard cut at the token budget).
func pickBoundary(boundaries []bool, scores map[int]float64, from, limit int) int {
	best := -1
	bestScore := math.Inf(-1)
	for i := from; i <= limit && i < len(boundaries); i++ {
		if !boundaries[i] {
			continue
		}
		if scores == nil {
			return i
		}
		score, ok := scores[i]
		if !ok {
			score = 0 // sentence boundary inside a turn: no discontinuity signal
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best >= 0 {
		return best
	}
	return limit
}

func buildChunk(position int, words []entities.TranscriptWord, start, end int) entities.TranscriptChunk {
	texts := make([]string, 0, end-start)
	speakers := make([]string, 0, 2)
	seen := make(map[string]struct{})
	for _, w := range words[start:end] {
		texts = append(texts, w.Text)
		if w.Speaker != "" {
			if _, ok := seen[w.Speaker]; !ok {
				seen[w.Speaker] = struct{}{}
				speakers = append(speakers, w.Speaker)
			}
		}
	}
	return entities.TranscriptChunk{
		ID:         entities.ChunkID(position),
		Text:       strings.Join(texts, " "),
		Start:      words[start].Start,
		End:        words[end-1].End,
		Speakers:   speakers,
		TokenCount: estimateTokens(end - start),
		FirstWord:  start,
		LastWord:   end - 1,
	}
}

func cosine32(a, b []float32) float32 {
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
