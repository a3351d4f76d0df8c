package vectorIndex

import (
	"context"

	"kbase/internal/domain/kbModel"
)

// Index is the nearest-neighbor store holding one embedding per chunk.
// Implementations address points by the chunk identifier, so removing a
// chunk from the document store and from the index use the same handle.
type Index interface {
	EnsureCollection(ctx context.Context, collection string) error
	UpsertBatch(ctx context.Context, collection string, chunks []kbModel.DocChunk, vectors [][]float32) error
	RemoveBatch(ctx context.Context, collection string, identifiers []string) error
	Query(ctx context.Context, collection string, vector []float32, limit uint64) ([]kbModel.MatchResult, error)
	GetCachedAnswer(ctx context.Context, vector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, question string, vector []float32, answer string) error
}
