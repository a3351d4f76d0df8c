package kb_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kbase/internal/config"
	"kbase/internal/domain/jobModel"
	"kbase/internal/domain/kbModel"
	"kbase/internal/kb"
	"kbase/internal/kb/deletion"
	"kbase/internal/kb/extract"
	"kbase/internal/kb/ingest"
)

func queryJob() jobModel.Job {
	return jobModel.Job{
		Id: "test-job",
		JobPayload: jobModel.JobPayload{
			Question: "test question",
		},
	}
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
}

func TestProcessQuery_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore, l *MockLLM)
		expectedStatus jobModel.JobStatus
		expectedAnswer string
		expectedCode   int
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, contextText string) (string, error) {
					return "final answer", nil
				}
			},
			expectedAnswer: "final answer",
		},
		{
			name: "Success_Cache_Hit",
			setupMocks: func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore, l *MockLLM) {
				v.OnGetCachedAnswer = func(ctx context.Context, emb []float32) (string, bool, error) {
					return "cached answer", true, nil
				}
				l.OnGenerate = func(ctx context.Context, q string, contextText string) (string, error) {
					t.Error("a cache hit must skip generation")
					return "", nil
				}
			},
			expectedAnswer: "cached answer",
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusInternalServerError,
		},
		{
			name: "Failure_Vector_Search",
			setupMocks: func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore, l *MockLLM) {
				v.OnQuery = func(ctx context.Context, coll string, vec []float32, limit uint64) ([]kbModel.MatchResult, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusInternalServerError,
		},
		{
			name: "Failure_LLM_Generation",
			setupMocks: func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, q string, contextText string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorIndex{}
			mChunks := &MockChunkStore{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mChunks, mLLM)

			s := kb.NewService(mVec, mChunks, &MockBlobStore{}, mLLM, mEmbed)
			result := s.ProcessQuery(testCtx(), queryJob())

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedAnswer != "" && result.JobPayload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %s, want %s", result.JobPayload.Answer, tt.expectedAnswer)
			}
			if tt.expectedCode != 0 && result.Error.Code != tt.expectedCode {
				t.Errorf("Error Code got %d, want %d", result.Error.Code, tt.expectedCode)
			}
		})
	}
}

func TestProcessQuery_ThresholdKeepsCloseMatchesOnly(t *testing.T) {
	mVec := &MockVectorIndex{
		OnQuery: func(ctx context.Context, coll string, vec []float32, limit uint64) ([]kbModel.MatchResult, error) {
			return []kbModel.MatchResult{
				{Identifier: "Doc-chunk0", Score: 0.9},
				{Identifier: "Doc-chunk1", Score: config.MatchThreshold},
				{Identifier: "Doc-chunk2", Score: 0.69},
			}, nil
		},
	}
	var resolved []string
	mChunks := &MockChunkStore{
		OnGet: func(ctx context.Context, identifier string) (kbModel.DocChunk, bool, error) {
			resolved = append(resolved, identifier)
			return kbModel.DocChunk{Identifier: identifier, DocumentName: "Doc", PageContent: identifier}, true, nil
		},
	}

	s := kb.NewService(mVec, mChunks, &MockBlobStore{}, &MockLLM{}, &MockEmbedder{})
	result := s.ProcessQuery(testCtx(), queryJob())

	if result.Status == jobModel.JobStatusError {
		t.Fatalf("query failed: %+v", result.Error)
	}
	// a score exactly at the threshold is close enough; 0.69 is not
	if len(resolved) != 2 || resolved[0] != "Doc-chunk0" || resolved[1] != "Doc-chunk1" {
		t.Errorf("wrong matches survived the threshold: %v", resolved)
	}
}

func TestProcessQuery_StaleIdentifiersDroppedSilently(t *testing.T) {
	mVec := &MockVectorIndex{
		OnQuery: func(ctx context.Context, coll string, vec []float32, limit uint64) ([]kbModel.MatchResult, error) {
			return []kbModel.MatchResult{
				{Identifier: "gone-chunk0", Score: 0.95},
				{Identifier: "Doc-chunk0", Score: 0.9},
			}, nil
		},
	}
	mChunks := &MockChunkStore{
		OnGet: func(ctx context.Context, identifier string) (kbModel.DocChunk, bool, error) {
			if identifier == "gone-chunk0" {
				return kbModel.DocChunk{}, false, nil
			}
			return kbModel.DocChunk{Identifier: identifier, DocumentName: "Doc", PageContent: "live text"}, true, nil
		},
	}
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, q string, contextText string) (string, error) {
			if strings.Contains(contextText, "gone") {
				t.Error("stale chunk leaked into the prompt")
			}
			return "answer from live text", nil
		},
	}

	s := kb.NewService(mVec, mChunks, &MockBlobStore{}, mLLM, &MockEmbedder{})
	result := s.ProcessQuery(testCtx(), queryJob())

	if result.JobPayload.Answer != "answer from live text" {
		t.Errorf("expected an answer from the surviving chunk, got %q", result.JobPayload.Answer)
	}
	if len(result.JobPayload.Sources) != 1 || result.JobPayload.Sources[0] != "Doc" {
		t.Errorf("stale hit must not contribute a source: %v", result.JobPayload.Sources)
	}
}

func TestProcessQuery_SourcesDedupedInRankOrder(t *testing.T) {
	mVec := &MockVectorIndex{
		OnQuery: func(ctx context.Context, coll string, vec []float32, limit uint64) ([]kbModel.MatchResult, error) {
			return []kbModel.MatchResult{
				{Identifier: "B-chunk0", Score: 0.95},
				{Identifier: "A-chunk0", Score: 0.9},
				{Identifier: "B-chunk1", Score: 0.85},
			}, nil
		},
	}
	mChunks := &MockChunkStore{
		OnGet: func(ctx context.Context, identifier string) (kbModel.DocChunk, bool, error) {
			owner := strings.SplitN(identifier, "-", 2)[0]
			return kbModel.DocChunk{Identifier: identifier, DocumentName: owner, PageContent: "text"}, true, nil
		},
	}

	s := kb.NewService(mVec, mChunks, &MockBlobStore{}, &MockLLM{}, &MockEmbedder{})
	result := s.ProcessQuery(testCtx(), queryJob())

	want := []string{"B", "A"}
	if len(result.JobPayload.Sources) != 2 ||
		result.JobPayload.Sources[0] != want[0] || result.JobPayload.Sources[1] != want[1] {
		t.Errorf("Sources got %v, want %v", result.JobPayload.Sources, want)
	}
}

func TestProcessQuery_NoContextAnswersSentinel(t *testing.T) {
	mVec := &MockVectorIndex{
		OnQuery: func(ctx context.Context, coll string, vec []float32, limit uint64) ([]kbModel.MatchResult, error) {
			return []kbModel.MatchResult{{Identifier: "Doc-chunk0", Score: 0.2}}, nil
		},
	}
	mLLM := &MockLLM{
		OnGenerate: func(ctx context.Context, q string, contextText string) (string, error) {
			t.Error("generation must be skipped without context")
			return "", nil
		},
	}

	s := kb.NewService(mVec, &MockChunkStore{}, &MockBlobStore{}, mLLM, &MockEmbedder{})
	result := s.ProcessQuery(testCtx(), queryJob())

	if result.Status == jobModel.JobStatusError {
		t.Fatalf("an empty retrieval is a business answer, not an error: %+v", result.Error)
	}
	if result.JobPayload.Answer != config.NoContextSentinel {
		t.Errorf("Answer got %q, want the sentinel", result.JobPayload.Answer)
	}
}

func newServiceWithRealEngines(mVec *MockVectorIndex, mChunks *MockChunkStore,
	mBlobs *MockBlobStore, mEmbed *MockEmbedder) kb.Service {
	ingester := ingest.NewEngine(mBlobs, mChunks, mVec, mEmbed, extract.NewFileExtractor())
	deleter := deletion.NewEngine(mBlobs, mChunks, mVec)
	return kb.NewServiceWithEngines(mVec, mChunks, mBlobs, &MockLLM{}, mEmbed, ingester, deleter)
}

func TestIngestDocument_Scenarios(t *testing.T) {
	stage := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "upload.txt")
		if err := os.WriteFile(path, []byte("test content for ingestion"), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
	}{
		{
			name:         "Ingestion_Success",
			setupMocks:   func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore) {},
			expectedStep: jobModel.Complete,
		},
		{
			name: "Failure_Batch_Upsert",
			setupMocks: func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore) {
				v.OnUpsertBatch = func(ctx context.Context, coll string, chunks []kbModel.DocChunk, vectors [][]float32) error {
					return errors.New("disk full")
				}
			},
			expectedStatus: jobModel.JobStatusError,
		},
		{
			name: "Failure_Embedding",
			setupMocks: func(e *MockEmbedder, v *MockVectorIndex, c *MockChunkStore) {
				e.OnBatchEmbedding = func(ctx context.Context, chunks []string) ([][]float32, error) {
					return nil, errors.New("quota exhausted")
				}
			},
			expectedStatus: jobModel.JobStatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorIndex{}
			mChunks := &MockChunkStore{}

			tt.setupMocks(mEmbed, mVec, mChunks)

			s := newServiceWithRealEngines(mVec, mChunks, &MockBlobStore{}, mEmbed)

			job := jobModel.Job{
				Id:      "ingest-job-1",
				JobType: jobModel.JobTypeIngest,
				JobPayload: jobModel.JobPayload{
					IngestFileName: "upload.txt",
					IngestURL:      stage(t),
				},
			}

			result := s.IngestDocument(testCtx(), job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedStep != "" && result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}
			if result.Status != jobModel.JobStatusError && len(result.JobPayload.ChunkIds) == 0 {
				t.Error("a successful ingestion must report its chunk identifiers")
			}
		})
	}
}

func TestDeleteDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		payload        jobModel.JobPayload
		expectedStatus jobModel.JobStatus
		expectedCode   int
	}{
		{
			name:    "Delete_By_Name",
			payload: jobModel.JobPayload{DocumentName: "Doc"},
		},
		{
			name:    "Delete_By_Identifiers",
			payload: jobModel.JobPayload{ChunkIds: []string{"Doc-chunk0"}},
		},
		{
			name:           "Reject_Both_Selectors",
			payload:        jobModel.JobPayload{DocumentName: "Doc", ChunkIds: []string{"Doc-chunk0"}},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadRequest,
		},
		{
			name:           "Reject_No_Selector",
			payload:        jobModel.JobPayload{},
			expectedStatus: jobModel.JobStatusError,
			expectedCode:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServiceWithRealEngines(&MockVectorIndex{}, &MockChunkStore{}, &MockBlobStore{}, &MockEmbedder{})

			result := s.DeleteDocument(testCtx(), jobModel.Job{
				Id:         "delete-job-1",
				JobType:    jobModel.JobTypeDelete,
				JobPayload: tt.payload,
			})

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedCode != 0 && result.Error.Code != tt.expectedCode {
				t.Errorf("Error Code got %d, want %d", result.Error.Code, tt.expectedCode)
			}
		})
	}
}

func TestListDocuments(t *testing.T) {
	mBlobs := &MockBlobStore{
		OnList: func(ctx context.Context) ([]string, error) {
			return []string{"a.pdf", "b.pdf"}, nil
		},
	}
	s := kb.NewService(&MockVectorIndex{}, &MockChunkStore{}, mBlobs, &MockLLM{}, &MockEmbedder{})

	names, err := s.ListDocuments(testCtx())
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("unexpected listing: %v", names)
	}
}
