package qdrantIndex

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"kbase/internal/config"
	"kbase/internal/domain/kbModel"
	"kbase/pkg/logger_i"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

type Index struct {
	client *qdrant.Client
	logger *logger_i.Logger
}

// NewIndex dials Qdrant and ensures the semantic-cache collection exists.
// The chunk collection itself is created lazily via EnsureCollection.
func NewIndex(ctx context.Context, host string, port int) (*Index, error) {
	logger := logger_i.NewLogger("Qdrant")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: dialing qdrant: %v", kbModel.ErrStoreUnavailable, err)
	}

	idx := &Index{client: client, logger: logger}
	if err := idx.EnsureCollection(ctx, config.AnswerCacheCollectionName); err != nil {
		logger.Error("Answer cache collection creation failed", "error", err)
	}
	go idx.closeOnDone(ctx)

	return idx, nil
}

func (idx *Index) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	idx.logger.Info("Shutting down Qdrant")
	if err := idx.client.Close(); err != nil {
		idx.logger.Error("could not close Qdrant: ", "error:", err)
	}
	idx.logger.Info("Closed Qdrant")
}

// pointID maps a chunk identifier onto Qdrant's id space. Qdrant only
// accepts UUIDs or integers, so we derive a name-based UUID: the same
// identifier always yields the same point, which keeps re-ingestion an
// overwrite instead of a duplicate.
func pointID(identifier string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(identifier)).String()
}

func (idx *Index) EnsureCollection(ctx context.Context, collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: empty collection name", kbModel.ErrInvalidArgument)
	}

	exists, err := idx.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %s: %v", kbModel.ErrStoreUnavailable, collection, err)
	}
	if exists {
		return nil
	}

	err = idx.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection %s: %v", kbModel.ErrStoreUnavailable, collection, err)
	}
	return nil
}

func (idx *Index) UpsertBatch(ctx context.Context, collection string, chunks []kbModel.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: got %d chunks but %d vectors", kbModel.ErrInvalidArgument, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(chunk.Identifier)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":       chunk.Identifier,
				"document_name":  chunk.DocumentName,
				"page_content":   chunk.PageContent,
				"sequence_index": chunk.SequenceIndex,
			}),
		}
	}

	_, err := idx.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: qdrant upsert: %v", kbModel.ErrStoreUnavailable, err)
	}
	return nil
}

// RemoveBatch drops the points for the given identifiers. Identifiers with
// no point behind them are ignored, which makes deletion retryable.
func (idx *Index) RemoveBatch(ctx context.Context, collection string, identifiers []string) error {
	if len(identifiers) == 0 {
		return nil
	}

	ids := make([]*qdrant.PointId, len(identifiers))
	for i, identifier := range identifiers {
		ids[i] = qdrant.NewID(pointID(identifier))
	}

	_, err := idx.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelector(ids...),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("%w: qdrant delete: %v", kbModel.ErrStoreUnavailable, err)
	}
	return nil
}

func (idx *Index) Query(ctx context.Context, collection string, vector []float32, limit uint64) ([]kbModel.MatchResult, error) {
	loggr := idx.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if err := validateVector(vector); err != nil {
		return nil, err
	}

	hits, err := idx.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, fmt.Errorf("%w: qdrant query: %v", kbModel.ErrStoreUnavailable, err)
	}

	matches := make([]kbModel.MatchResult, 0, len(hits))
	for _, hit := range hits {
		identifier := hit.Payload["chunk_id"].GetStringValue()
		if identifier == "" {
			loggr.Warn("Hit without a chunk_id payload, skipping", "pointId", hit.Id)
			continue
		}
		matches = append(matches, kbModel.MatchResult{
			Identifier: identifier,
			Score:      hit.Score,
		})
	}

	loggr.Debug("Nearest neighbors", "requested", limit, "returned", len(matches))
	return matches, nil
}

var errEmptyVector = errors.New("empty query vector")

func validateVector(vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: %v", kbModel.ErrInvalidArgument, errEmptyVector)
	}
	return nil
}
