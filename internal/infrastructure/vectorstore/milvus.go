package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const milvusCollection = "transcript_chunks"

// MilvusStore keeps chunk embeddings in a Milvus collection with an HNSW
// cosine index. Run isolation uses a scalar run_id filter.
type MilvusStore struct {
	mc client.Client
}

// NewMilvusStore connects to Milvus and ensures the collection and index exist.
func NewMilvusStore(ctx context.Context, addr string) (*MilvusStore, error) {
	if addr == "" {
		addr = "localhost:19530"
	}
	mc, err := client.NewClient(ctx, client.Config{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}

	s := &MilvusStore{mc: mc}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := s.mc.HasCollection(ctx, milvusCollection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !has {
		schema := entity.NewSchema()
		schema.WithField(entity.NewField().WithName("id").WithIsAutoID(true).WithIsPrimaryKey(true).WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("run_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(128))
		schema.WithField(entity.NewField().WithName("chunk_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(64))
		schema.WithField(entity.NewField().WithName("start_seconds").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("end_seconds").WithDataType(entity.FieldTypeDouble))
		schema.WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(8192))
		schema.WithField(entity.NewField().WithName("speakers").WithDataType(entity.FieldTypeVarChar).WithMaxLength(512))
		schema.WithField(entity.NewField().WithName("vector").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(EmbeddingDim)))

		if err := s.mc.CreateCollection(ctx, schema, int32(2)); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return fmt.Errorf("new hnsw index: %w", err)
	}
	if err := s.mc.CreateIndex(ctx, milvusCollection, "vector", idx, false, client.WithIndexName("idx_vector")); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := s.mc.LoadCollection(ctx, milvusCollection, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func (s *MilvusStore) Upsert(ctx context.Context, runID string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	// Milvus has no scalar-key upsert for auto-id collections, so clear
	// existing rows for the chunk ids first.
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, fmt.Sprintf("%q", d.ChunkID))
	}
	expr := fmt.Sprintf("run_id == %q && chunk_id in [%s]", runID, strings.Join(ids, ","))
	if err := s.mc.Delete(ctx, milvusCollection, "", expr); err != nil {
		return fmt.Errorf("delete existing chunks: %w", err)
	}

	runIDs := make([]string, 0, len(docs))
	chunkIDs := make([]string, 0, len(docs))
	starts := make([]float64, 0, len(docs))
	ends := make([]float64, 0, len(docs))
	texts := make([]string, 0, len(docs))
	speakers := make([]string, 0, len(docs))
	vectors := make([][]float32, 0, len(docs))
	for _, d := range docs {
		runIDs = append(runIDs, runID)
		chunkIDs = append(chunkIDs, d.ChunkID)
		starts = append(starts, d.Start)
		ends = append(ends, d.End)
		texts = append(texts, d.Text)
		speakers = append(speakers, strings.Join(d.Speakers, ","))
		vectors = append(vectors, d.Embedding)
	}

	_, err := s.mc.Insert(ctx, milvusCollection, "",
		entity.NewColumnVarChar("run_id", runIDs),
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnDouble("start_seconds", starts),
		entity.NewColumnDouble("end_seconds", ends),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("speakers", speakers),
		entity.NewColumnFloatVector("vector", EmbeddingDim, vectors),
	)
	if err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

func (s *MilvusStore) Search(ctx context.Context, runID string, vector []float32, topK int, window *TimeWindow) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	filter := fmt.Sprintf("run_id == %q", runID)
	if window != nil {
		filter += fmt.Sprintf(" && end_seconds >= %f && start_seconds <= %f", window.Min, window.Max)
	}

	sp, _ := entity.NewIndexHNSWSearchParam(74)
	res, err := s.mc.Search(ctx, milvusCollection, []string{}, filter,
		[]string{"chunk_id", "start_seconds", "end_seconds", "text", "speakers"},
		[]entity.Vector{entity.FloatVector(vector)}, "vector", entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	var results []SearchResult
	for _, r := range res {
		cols := map[string]entity.Column{}
		for _, c := range r.Fields {
			cols[c.Name()] = c
		}
		for i := 0; i < r.ResultCount; i++ {
			var sr SearchResult
			if c, ok := cols["chunk_id"].(*entity.ColumnVarChar); ok && i < len(c.Data()) {
				sr.ChunkID = c.Data()[i]
			}
			if c, ok := cols["start_seconds"].(*entity.ColumnDouble); ok && i < len(c.Data()) {
				sr.Start = c.Data()[i]
			}
			if c, ok := cols["end_seconds"].(*entity.ColumnDouble); ok && i < len(c.Data()) {
				sr.End = c.Data()[i]
			}
			if c, ok := cols["text"].(*entity.ColumnVarChar); ok && i < len(c.Data()) {
				sr.Text = c.Data()[i]
			}
			if c, ok := cols["speakers"].(*entity.ColumnVarChar); ok && i < len(c.Data()) {
				if spk := c.Data()[i]; spk != "" {
					sr.Speakers = strings.Split(spk, ",")
				}
			}
			sr.Score = r.Scores[i]
			results = append(results, sr)
		}
	}
	return results, nil
}

func (s *MilvusStore) Count(ctx context.Context, runID string) (int, error) {
	res, err := s.mc.Query(ctx, milvusCollection, []string{}, fmt.Sprintf("run_id == %q", runID), []string{"count(*)"})
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	for _, c := range res {
		if col, ok := c.(*entity.ColumnInt64); ok && len(col.Data()) > 0 {
			return int(col.Data()[0]), nil
		}
	}
	return 0, nil
}

func (s *MilvusStore) Drop(ctx context.Context, runID string) error {
	if err := s.mc.Delete(ctx, milvusCollection, "", fmt.Sprintf("run_id == %q", runID)); err != nil {
		return fmt.Errorf("drop run %s: %w", runID, err)
	}
	return nil
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close() error {
	return s.mc.Close()
}
