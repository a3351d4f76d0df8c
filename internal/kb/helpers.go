package kb

import (
	"context"
	"net/http"
	"strings"
	"time"

	"kbase/internal/config"
	"kbase/internal/domain/jobModel"
	"kbase/internal/domain/kbModel"
	"kbase/internal/metrics"
	"kbase/pkg/logger_i"
)

func returnOutput(job jobModel.Job, ans string) jobModel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobModel.Complete
	return job
}

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessQuery", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) jobBadRequest(job jobModel.Job, err error) jobModel.Job {
	s.logger.Error("INVALID_REQUEST", "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusBadRequest,
		Message: err.Error(),
		Retry:   false,
	}
	job.Status = jobModel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job) ([]float32, error) {
	*job = logOutput(*job, jobModel.EmbeddingAPICall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) (string, bool) {
	*job = logOutput(*job, jobModel.CacheCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, _ := s.vectors.GetCachedAnswer(ctx, emb)
	return ans, found
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, emb []float32) ([]kbModel.MatchResult, error) {
	*job = logOutput(*job, jobModel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := s.vectors.Query(ctx, s.collection, emb, config.NumNeighbors)
	if err != nil {
		return nil, err
	}
	return filterByThreshold(matches, config.MatchThreshold), nil
}

// filterByThreshold keeps only the neighbors close enough to matter. The
// collections use cosine similarity, so closeness means score at or above
// the cutoff.
func filterByThreshold(matches []kbModel.MatchResult, threshold float32) []kbModel.MatchResult {
	kept := make([]kbModel.MatchResult, 0, len(matches))
	for _, m := range matches {
		if m.Score >= threshold {
			kept = append(kept, m)
		}
	}
	return kept
}

// executeResolveStep swaps match identifiers for the stored chunk records.
// An identifier with no record behind it is stale, not fatal: the index can
// briefly lag a deletion, so those hits are dropped quietly. Sources list the
// owning documents once each, in the order retrieval ranked them.
func (s *service) executeResolveStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, matches []kbModel.MatchResult) ([]string, []string) {
	*job = logOutput(*job, jobModel.ChunkStoreCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chunk_resolve", time.Since(start)) }()

	var contexts []string
	var sources []string
	seen := map[string]bool{}

	for _, match := range matches {
		chunk, found, err := s.chunks.Get(ctx, match.Identifier)
		if err != nil {
			log.Error("Chunk lookup failed, skipping hit", "identifier", match.Identifier, "error", err)
			continue
		}
		if !found {
			log.Warn("Stale identifier in the index", "identifier", match.Identifier)
			continue
		}

		contexts = append(contexts, chunk.PageContent)
		if !seen[chunk.DocumentName] {
			seen[chunk.DocumentName] = true
			sources = append(sources, chunk.DocumentName)
		}
	}
	return contexts, sources
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, contexts []string) (string, error) {
	*job = logOutput(*job, jobModel.LLMCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llm.Generate(ctx, job.JobPayload.Question, strings.Join(contexts, " "))
}
