// Package deletion removes a document's footprint from all three stores.
// Like ingestion it has no cross-store transaction: every store is attempted
// even when an earlier one fails, the failures are joined, and re-running the
// same deletion is a harmless no-op.
package deletion

import (
	"context"
	"errors"
	"fmt"

	"kbase/internal/config"
	"kbase/internal/domain/kbModel"
	"kbase/internal/kb/blobStore"
	"kbase/internal/kb/chunkId"
	"kbase/internal/kb/docStore"
	"kbase/internal/kb/vectorIndex"
	"kbase/pkg/logger_i"
)

type Engine struct {
	Blobs      blobStore.Store
	Chunks     docStore.Store
	Vectors    vectorIndex.Index
	Collection string

	logger *logger_i.Logger
}

func NewEngine(blobs blobStore.Store, chunks docStore.Store, vectors vectorIndex.Index) *Engine {
	return &Engine{
		Blobs:      blobs,
		Chunks:     chunks,
		Vectors:    vectors,
		Collection: config.ChunkCollectionName,
		logger:     logger_i.NewLogger("DeletionEngine"),
	}
}

// Delete takes exactly one selector: a document name, whose chunks are
// resolved by a prefix range scan, or an explicit identifier list. Passing
// both or neither is an invalid request. When deleting by name the raw blob
// goes too; a blob that is already gone is not an error.
func (e *Engine) Delete(ctx context.Context, documentName string, identifiers []string) error {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	byName := documentName != ""
	byIds := len(identifiers) > 0
	if byName == byIds {
		return fmt.Errorf("%w: need a document name or an identifier list, not both", kbModel.ErrInvalidArgument)
	}

	var stepErrors []error

	if byName {
		start, end := chunkId.Range(documentName)
		resolved, err := e.Chunks.ScanRange(ctx, start, end)
		if err != nil {
			// without the scan we cannot touch the chunk stores, but the
			// blob delete below can still proceed
			stepErrors = append(stepErrors, err)
		}
		identifiers = resolved

		if err := e.Blobs.Delete(ctx, documentName); err != nil {
			stepErrors = append(stepErrors, err)
		}
	}

	if len(identifiers) > 0 {
		if err := e.Chunks.DeleteBatch(ctx, identifiers); err != nil {
			stepErrors = append(stepErrors, err)
		}
		if err := e.Vectors.RemoveBatch(ctx, e.Collection, identifiers); err != nil {
			stepErrors = append(stepErrors, err)
		}
	}

	log.Info("Deletion finished", "document", documentName, "chunks", len(identifiers),
		"failures", len(stepErrors))
	return errors.Join(stepErrors...)
}
