package kb

import (
	"context"
	"errors"
	"os"
	"time"

	"kbase/internal/config"
	"kbase/internal/domain/jobModel"
	"kbase/internal/domain/kbModel"
	"kbase/internal/kb/blobStore"
	"kbase/internal/kb/deletion"
	"kbase/internal/kb/docStore"
	"kbase/internal/kb/embedding"
	"kbase/internal/kb/ingest"
	"kbase/internal/kb/llm"
	"kbase/internal/kb/vectorIndex"
	"kbase/internal/metrics"
	"kbase/pkg/logger_i"
)

// Service is all the worker sees. It carries a job through one of the three
// pipelines and hands it back with the payload or the error filled in; the
// worker never touches the stores or the model clients directly.
type Service interface {
	ProcessQuery(ctx context.Context, job jobModel.Job) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	DeleteDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	ListDocuments(ctx context.Context) ([]string, error)
}

type service struct {
	vectors    vectorIndex.Index
	chunks     docStore.Store
	blobs      blobStore.Store
	llm        llm.Provider
	embedder   embedding.Embedder
	ingester   *ingest.Engine
	deleter    *deletion.Engine
	collection string
	logger     *logger_i.Logger
}

func NewService(vectors vectorIndex.Index, chunks docStore.Store, blobs blobStore.Store,
	provider llm.Provider, embedder embedding.Embedder) Service {
	return &service{
		vectors:    vectors,
		chunks:     chunks,
		blobs:      blobs,
		llm:        provider,
		embedder:   embedder,
		ingester:   ingest.NewEngine(blobs, chunks, vectors, embedder, nil),
		deleter:    deletion.NewEngine(blobs, chunks, vectors),
		collection: config.ChunkCollectionName,
		logger:     logger_i.NewLogger("KB Service :"),
	}
}

// NewServiceWithEngines wires pre-built engines in, which is how the tests
// substitute fakes and how main injects the file extractor.
func NewServiceWithEngines(vectors vectorIndex.Index, chunks docStore.Store, blobs blobStore.Store,
	provider llm.Provider, embedder embedding.Embedder,
	ingester *ingest.Engine, deleter *deletion.Engine) Service {
	return &service{
		vectors:    vectors,
		chunks:     chunks,
		blobs:      blobs,
		llm:        provider,
		embedder:   embedder,
		ingester:   ingester,
		deleter:    deleter,
		collection: config.ChunkCollectionName,
		logger:     logger_i.NewLogger("KB Service :"),
	}
}

func (s *service) ProcessQuery(ctx context.Context, jobt jobModel.Job) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.QueryCall

	// Embedding
	questionVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, questionVector)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	// Nearest Neighbors
	matches, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, questionVector)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	// Resolve identifiers against the chunk records
	contexts, sources := s.executeResolveStep(processContext, inMethodLogger, &jobt, matches)
	jobt.JobPayload.Sources = sources

	// Nothing relevant enough: a business answer, not a failure
	if len(contexts) == 0 {
		inMethodLogger.Info("No context above the match threshold")
		return returnOutput(jobt, config.NoContextSentinel)
	}

	// LLM Generation
	answer, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, contexts)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	//Background Cache Save
	go func() {
		err = s.vectors.SaveToCache(ctx, jobt.JobPayload.Question, questionVector, answer)
		if err != nil {
			s.logger.Error("Failed to save to cache")
		}
	}()

	return returnOutput(jobt, answer)
}

// IngestDocument runs the upload staged by the handler through the ingestion
// pipeline. The staged temp file is removed afterwards either way.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	job.CurrentStep = jobModel.IngestProcessing

	raw, err := os.ReadFile(job.JobPayload.IngestURL)
	if err != nil {
		return s.jobError(job, err, "INGESTION_STAGING_FAILURE", false)
	}
	defer os.Remove(job.JobPayload.IngestURL)

	identifiers, err := s.ingester.Ingest(ctx, job.JobPayload.IngestFileName, raw)
	job.JobPayload.ChunkIds = identifiers
	if err != nil {
		return s.jobError(job, err, "INGESTION_FAILURE", true)
	}

	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) DeleteDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_deletion", time.Since(start)) }()

	job.CurrentStep = jobModel.DeleteProcessing

	err := s.deleter.Delete(ctx, job.JobPayload.DocumentName, job.JobPayload.ChunkIds)
	if err != nil {
		if errors.Is(err, kbModel.ErrInvalidArgument) {
			return s.jobBadRequest(job, err)
		}
		return s.jobError(job, err, "DELETION_FAILURE", true)
	}

	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) ListDocuments(ctx context.Context) ([]string, error) {
	return s.blobs.List(ctx)
}
