package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"kbase/internal/config"
	"kbase/internal/domain/jobModel"
	"kbase/internal/job"
	"kbase/internal/kb"
	"kbase/internal/metrics"
	"kbase/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service   *job.Service
	kbService kb.Service
}

func InitJobHandler(jobService *job.Service, kbService kb.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, kbService: kbService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(newJob newJobData) {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job", "type", newJob.jobType)
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// ListKnownDocuments is the one synchronous read: it does not go through the
// job queue.
func ListKnownDocuments(ctx context.Context) ([]string, error) {
	return handlerInstance.kbService.ListDocuments(ctx)
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusQueued
	_job.JobType = newJob.jobType

	switch newJob.jobType {
	case jobModel.JobTypeIngest:
		_job.CurrentStep = jobModel.IngestInit
		_job.JobPayload.IngestFileName = newJob.documentName
		_job.JobPayload.IngestURL = newJob.documentSource

	case jobModel.JobTypeDelete:
		_job.CurrentStep = jobModel.DeleteInit
		_job.JobPayload.DocumentName = newJob.documentName
		_job.JobPayload.ChunkIds = newJob.chunkIds

	default:
		_job.CurrentStep = jobModel.UserQueryInit
		_job.JobPayload.Question = newJob.question
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a new worker is signalled every N requests, or immediately for ingestion
	//and deletion jobs: those do batched external calls and can run long,
	//and idle workers retire on their own anyway
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType != jobModel.JobTypeQuery {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
