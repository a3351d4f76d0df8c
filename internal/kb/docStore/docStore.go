package docStore

import (
	"context"

	"kbase/internal/domain/kbModel"
)

// Store holds chunk records keyed by chunk identifier. ScanRange is the one
// capability beyond a plain key/value store: an ordered scan over the
// identifier key space, which is how a document's chunk set is discovered
// without a secondary index.
type Store interface {
	SaveBatch(ctx context.Context, chunks []kbModel.DocChunk) error
	Get(ctx context.Context, identifier string) (kbModel.DocChunk, bool, error)
	DeleteBatch(ctx context.Context, identifiers []string) error
	ScanRange(ctx context.Context, start string, end string) ([]string, error)
}
