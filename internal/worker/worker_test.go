package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kbase/internal/domain/jobModel"
	"kbase/internal/job"
	"kbase/pkg/logger_i"
)

// MockKbService to track if jobs are executed
type MockKbService struct {
	ProcessedCount int32
	IngestedCount  int32
	DeletedCount   int32
}

func (m *MockKbService) ProcessQuery(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return j
}

func (m *MockKbService) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.IngestedCount, 1)
	return j
}

func (m *MockKbService) DeleteDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.DeletedCount, 1)
	return j
}

func (m *MockKbService) ListDocuments(ctx context.Context) ([]string, error) {
	return nil, nil
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
	}
	mockKb := &MockKbService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockKb)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		// Signal dispatcher to create a worker
		jobSvc.DispatcherChannel <- true

		// Give it a millisecond to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker routes jobs by type", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "q-1", JobType: jobModel.JobTypeQuery}
		jobSvc.JobChannel <- jobModel.Job{Id: "i-1", JobType: jobModel.JobTypeIngest}
		jobSvc.JobChannel <- jobModel.Job{Id: "d-1", JobType: jobModel.JobTypeDelete}

		// Wait for worker to pick up and process
		time.Sleep(100 * time.Millisecond)

		if n := atomic.LoadInt32(&mockKb.ProcessedCount); n != 1 {
			t.Errorf("Expected 1 query processed, got %d", n)
		}
		if n := atomic.LoadInt32(&mockKb.IngestedCount); n != 1 {
			t.Errorf("Expected 1 ingestion processed, got %d", n)
		}
		if n := atomic.LoadInt32(&mockKb.DeletedCount); n != 1 {
			t.Errorf("Expected 1 deletion processed, got %d", n)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		// Send stop signal
		close(stopChan)

		// Wait for workers to exit
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	// Temporarily override config/globals for test
	atomic.StoreInt64(&currentWorkerCount, 0)
	oldTimeout := idleWorkerTimeout
	idleWorkerTimeout = 50 * time.Millisecond
	defer func() { idleWorkerTimeout = oldTimeout }()

	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockKbService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Spawn 2 workers manually; idle retirement stops at the floor of 1
	createWorker()
	createWorker()
	time.Sleep(500 * time.Millisecond)

	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 1 {
		t.Errorf("Expected idle workers to retire down to 1, got %d", count)
	}
}
