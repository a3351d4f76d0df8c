// Package ingest drives a document through the three stores: raw bytes into
// the blob store, chunk records into the document store, and embeddings into
// the vector index. There is no transaction across the stores, so each step
// is attempted regardless of earlier failures and the errors are joined;
// re-running the same ingestion overwrites rather than duplicates.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"kbase/internal/config"
	"kbase/internal/domain/kbModel"
	"kbase/internal/kb/blobStore"
	"kbase/internal/kb/chunkId"
	"kbase/internal/kb/docStore"
	"kbase/internal/kb/embedding"
	"kbase/internal/kb/extract"
	"kbase/internal/kb/splitter"
	"kbase/internal/kb/vectorIndex"
	"kbase/pkg/logger_i"
)

// embedding calls and store writes go out in batches of this many chunks
const batchSize = 100

type Engine struct {
	Blobs      blobStore.Store
	Chunks     docStore.Store
	Vectors    vectorIndex.Index
	Embedder   embedding.Embedder
	Extractor  extract.Extractor
	SplitCfg   splitter.Config
	Collection string
	MaxPages   int

	logger *logger_i.Logger
}

func NewEngine(blobs blobStore.Store, chunks docStore.Store, vectors vectorIndex.Index,
	embedder embedding.Embedder, extractor extract.Extractor) *Engine {
	return &Engine{
		Blobs:     blobs,
		Chunks:    chunks,
		Vectors:   vectors,
		Embedder:  embedder,
		Extractor: extractor,
		SplitCfg: splitter.Config{
			ChunkSize:    config.ChunkSize,
			ChunkOverlap: config.ChunkOverlap,
			Separators:   splitter.DefaultSeparators,
		},
		Collection: config.ChunkCollectionName,
		MaxPages:   config.MaxPagesPerDocument,
		logger:     logger_i.NewLogger("IngestEngine"),
	}
}

// Ingest runs the full pipeline for one upload and returns the chunk
// identifiers it produced. A failed blob write does not stop the pipeline;
// a failed extraction does, since nothing downstream can proceed without
// text. The returned error joins every step failure.
func (e *Engine) Ingest(ctx context.Context, name string, raw []byte) ([]string, error) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document", name)
	var stepErrors []error

	// the raw upload is stored once under the original name, even when the
	// text is split into parts below
	if err := e.Blobs.Put(ctx, name, raw); err != nil {
		log.Error("Blob write failed, continuing", "error", err)
		stepErrors = append(stepErrors, err)
	}

	pages, err := e.Extractor.ExtractPages(name, raw)
	if err != nil {
		log.Error("Extraction failed, aborting", "error", err)
		stepErrors = append(stepErrors, err)
		return nil, errors.Join(stepErrors...)
	}
	log.Debug("Extracted pages", "count", len(pages))

	if err := e.Vectors.EnsureCollection(ctx, e.Collection); err != nil {
		stepErrors = append(stepErrors, err)
	}

	var identifiers []string
	for _, subDoc := range extract.SplitOversized(name, pages, e.MaxPages) {
		ids, err := e.ingestText(ctx, subDoc.Name, subDoc.Text)
		identifiers = append(identifiers, ids...)
		if err != nil {
			stepErrors = append(stepErrors, err)
		}
	}

	log.Info("Ingestion finished", "chunks", len(identifiers), "failures", len(stepErrors))
	return identifiers, errors.Join(stepErrors...)
}

// ingestText chunks one sub-document and pushes the batches through the
// document store and the vector index. Identifiers are assigned 0..N-1 in
// chunk order.
func (e *Engine) ingestText(ctx context.Context, name string, text string) ([]string, error) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document", name)

	pieces := splitter.Split(text, e.SplitCfg)
	if len(pieces) == 0 {
		log.Warn("Document produced no chunks, nothing to index")
		return nil, nil
	}

	chunks := make([]kbModel.DocChunk, len(pieces))
	identifiers := make([]string, len(pieces))
	for i, piece := range pieces {
		identifiers[i] = chunkId.Make(name, i)
		chunks[i] = kbModel.DocChunk{
			Identifier:    identifiers[i],
			DocumentName:  name,
			PageContent:   piece,
			SequenceIndex: i,
		}
	}

	var stepErrors []error
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := e.ingestBatch(ctx, chunks[start:end], pieces[start:end]); err != nil {
			log.Error("Batch failed, continuing with the rest", "from", start, "error", err)
			stepErrors = append(stepErrors, fmt.Errorf("batch starting at chunk %d: %w", start, err))
		}
	}

	return identifiers, errors.Join(stepErrors...)
}

func (e *Engine) ingestBatch(ctx context.Context, chunks []kbModel.DocChunk, pieces []string) error {
	var stepErrors []error

	if err := e.Chunks.SaveBatch(ctx, chunks); err != nil {
		stepErrors = append(stepErrors, err)
	}

	vectors, err := e.Embedder.BatchEmbedding(ctx, pieces)
	if err != nil {
		// without vectors there is nothing to upsert; the chunk records
		// above still stand and a retry overwrites them harmlessly
		stepErrors = append(stepErrors, err)
		return errors.Join(stepErrors...)
	}

	if err := e.Vectors.UpsertBatch(ctx, e.Collection, chunks, vectors); err != nil {
		stepErrors = append(stepErrors, err)
	}

	return errors.Join(stepErrors...)
}
