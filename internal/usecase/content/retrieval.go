package content

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/podflow-team/podflow/internal/domain/entities"
	"github.com/podflow-team/podflow/internal/infrastructure/vectorstore"
	"github.com/podflow-team/podflow/pkg/config"
)

// RetrievalQuery is a single retrieval request, constructed per generation
// sub-task and never persisted.
type RetrievalQuery struct {
	Text      string
	TimeRange *entities.TimeRange
	TopK      int
}

// RetrievedChunk is a chunk with its similarity score.
type RetrievedChunk struct {
	entities.TranscriptChunk
	Score float32
}

// Index is the per-run retrieval index. It is built fresh for every pipeline
// run and scoped by run id, so concurrent runs over different episodes never
// see each other's chunks.
//
// When the embedder is unavailable, the index degrades to term-frequency
// cosine scoring over the in-memory chunk set. Degraded retrieval is a
// first-class mode: it keeps the pipeline running with reduced ranking
// quality instead of failing every generator.
type Index struct {
	store    vectorstore.Store
	embedder Embedder
	runID    string
	topK     int
	logger   *zap.Logger

	chunks  []entities.TranscriptChunk
	lexical bool
	count   int
}

// NewIndex creates an empty index for one run.
func NewIndex(store vectorstore.Store, embedder Embedder, runID string, cfg *config.PipelineConfig, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	topK := cfg.RetrievalTopK
	if topK <= 0 {
		topK = 5
	}
	return &Index{
		store:    store,
		embedder: embedder,
		runID:    runID,
		topK:     topK,
		logger:   logger,
	}
}

// Build indexes the run's chunks. Hebrew and other-language text share the
// one multilingual embedding space; there is no per-language code path.
func (ix *Index) Build(ctx context.Context, chunks []entities.TranscriptChunk) error {
	ix.chunks = chunks
	ix.count = len(chunks)
	if len(chunks) == 0 {
		return nil
	}

	if ix.embedder == nil {
		ix.lexical = true
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil || len(vectors) != len(chunks) {
		ix.logger.Warn("embedding unavailable, retrieval degrades to lexical scoring",
			zap.String("run_id", ix.runID), zap.Error(err))
		ix.lexical = true
		return nil
	}

	docs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = vectorstore.Document{
			ChunkID:   c.ID,
			Text:      c.Text,
			Start:     c.Start,
			End:       c.End,
			Speakers:  c.Speakers,
			Embedding: vectors[i],
		}
	}
	if err := ix.store.Upsert(ctx, ix.runID, docs); err != nil {
		ix.logger.Warn("vector store upsert failed, retrieval degrades to lexical scoring",
			zap.String("run_id", ix.runID), zap.Error(err))
		ix.lexical = true
		return nil
	}
	return nil
}

// Empty reports whether the index holds no chunks at all.
func (ix *Index) Empty() bool {
	return ix.count == 0
}

// Search returns chunks ordered by decreasing similarity. The time filter is
// applied before ranking. An empty result is a valid outcome, not an error.
func (ix *Index) Search(ctx context.Context, q RetrievalQuery) ([]RetrievedChunk, error) {
	if ix.count == 0 {
		return nil, nil
	}
	topK := q.TopK
	if topK <= 0 {
		topK = ix.topK
	}

	if ix.lexical {
		return ix.searchLexical(q.Text, q.TimeRange, topK), nil
	}

	vectors, err := ix.embedder.EmbedTexts(ctx, []string{q.Text})
	if err != nil || len(vectors) != 1 {
		ix.logger.Warn("query embedding failed, using lexical scoring", zap.Error(err))
		return ix.searchLexical(q.Text, q.TimeRange, topK), nil
	}

	var window *vectorstore.TimeWindow
	if q.TimeRange != nil {
		window = &vectorstore.TimeWindow{Min: q.TimeRange.Min, Max: q.TimeRange.Max}
	}
	results, err := ix.store.Search(ctx, ix.runID, vectors[0], topK, window)
	if err != nil {
		ix.logger.Warn("vector store search failed, using lexical scoring", zap.Error(err))
		return ix.searchLexical(q.Text, q.TimeRange, topK), nil
	}

	retrieved := make([]RetrievedChunk, 0, len(results))
	for _, r := range results {
		retrieved = append(retrieved, RetrievedChunk{
			TranscriptChunk: ix.chunkByID(r.ChunkID, r),
			Score:           r.Score,
		})
	}
	return retrieved, nil
}

// chunkByID resolves a stored document back to the full chunk, falling back
// to the document fields if the id is unknown (e.g. a stale run).
func (ix *Index) chunkByID(id string, r vectorstore.SearchResult) entities.TranscriptChunk {
	for _, c := range ix.chunks {
		if c.ID == id {
			return c
		}
	}
	return entities.TranscriptChunk{
		ID:       r.ChunkID,
		Text:     r.Text,
		Start:    r.Start,
		End:      r.End,
		Speakers: r.Speakers,
	}
}

func (ix *Index) searchLexical(query string, timeRange *entities.TimeRange, topK int) []RetrievedChunk {
	qv := termVector(query)

	scored := make([]RetrievedChunk, 0, len(ix.chunks))
	for _, c := range ix.chunks {
		if timeRange != nil && !timeRange.Covers(c) {
			continue
		}
		scored = append(scored, RetrievedChunk{
			TranscriptChunk: c,
			Score:           float32(termCosine(qv, termVector(c.Text))),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// Close drops the run's documents from the backing store.
func (ix *Index) Close(ctx context.Context) {
	if ix.lexical || ix.count == 0 {
		return
	}
	if err := ix.store.Drop(ctx, ix.runID); err != nil {
		ix.logger.Warn("failed to drop run index", zap.String("run_id", ix.runID), zap.Error(err))
	}
}

// termVector builds an L2-normalized term-frequency vector.
func termVector(text string) map[string]float64 {
	v := make(map[string]float64)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		v[strings.Trim(tok, ".,!?;:'\"")]++
	}
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for k, w := range v {
		v[k] = w / norm
	}
	return v
}

func termCosine(a, b map[string]float64) float64 {
	var dot float64
	for k, va := range a {
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	return dot
}
