package qdrantIndex

import (
	"context"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"kbase/internal/config"
)

// GetCachedAnswer probes the answer cache with the question's embedding.
// Only a near-exact semantic match counts as a hit.
func (idx *Index) GetCachedAnswer(ctx context.Context, vector []float32) (string, bool, error) {
	loggr := idx.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if err := validateVector(vector); err != nil {
		return "", false, err
	}

	loggr.Info("Searching for cached answer")
	hits, err := idx.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: config.AnswerCacheCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil || len(hits) == 0 {
		if err != nil {
			loggr.Error("Cache Query failed", "error", err)
		}
		return "", false, err
	}

	loggr.Debug("Nearest cached question", "score", hits[0].Score)
	if hits[0].Score < config.CacheSimilarityCutoff {
		return "", false, nil
	}

	answer := hits[0].Payload["answer"].GetStringValue()
	return answer, true, nil
}

func (idx *Index) SaveToCache(ctx context.Context, question string, vector []float32, answer string) error {
	loggr := idx.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	loggr.Debug("Saving answer to cache")
	_, err := idx.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: config.AnswerCacheCollectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(pointID(question)),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"question":  question,
					"answer":    answer,
					"timestamp": time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		loggr.Error("Saving answer to cache failed", "error", err)
	}
	return err
}
