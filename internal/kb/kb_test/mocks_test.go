package kb_test

import (
	"context"

	"kbase/internal/domain/kbModel"
)

// MockVectorIndex implements vectorIndex.Index
type MockVectorIndex struct {
	// Control fields to simulate different behaviors
	OnQuery           func(ctx context.Context, collection string, vector []float32, limit uint64) ([]kbModel.MatchResult, error)
	OnGetCachedAnswer func(ctx context.Context, vector []float32) (string, bool, error)
	OnSaveToCache     func(ctx context.Context, question string, vector []float32, answer string) error
	OnEnsure          func(ctx context.Context, collection string) error
	OnUpsertBatch     func(ctx context.Context, collection string, chunks []kbModel.DocChunk, vectors [][]float32) error
	OnRemoveBatch     func(ctx context.Context, collection string, identifiers []string) error
}

func (m *MockVectorIndex) Query(ctx context.Context, collection string, vector []float32, limit uint64) ([]kbModel.MatchResult, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, collection, vector, limit)
	}
	return []kbModel.MatchResult{{Identifier: "Doc-chunk0", Score: 0.9}}, nil
}

func (m *MockVectorIndex) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorIndex) SaveToCache(ctx context.Context, question string, v []float32, a string) error {
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, question, v, a)
	}
	return nil
}

func (m *MockVectorIndex) EnsureCollection(ctx context.Context, collection string) error {
	if m.OnEnsure != nil {
		return m.OnEnsure(ctx, collection)
	}
	return nil
}

func (m *MockVectorIndex) UpsertBatch(ctx context.Context, collection string, chunks []kbModel.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, collection, chunks, vectors)
	}
	return nil
}

func (m *MockVectorIndex) RemoveBatch(ctx context.Context, collection string, identifiers []string) error {
	if m.OnRemoveBatch != nil {
		return m.OnRemoveBatch(ctx, collection, identifiers)
	}
	return nil
}

// MockChunkStore implements docStore.Store
type MockChunkStore struct {
	OnGet         func(ctx context.Context, identifier string) (kbModel.DocChunk, bool, error)
	OnSaveBatch   func(ctx context.Context, chunks []kbModel.DocChunk) error
	OnDeleteBatch func(ctx context.Context, identifiers []string) error
	OnScanRange   func(ctx context.Context, start, end string) ([]string, error)
}

func (m *MockChunkStore) Get(ctx context.Context, identifier string) (kbModel.DocChunk, bool, error) {
	if m.OnGet != nil {
		return m.OnGet(ctx, identifier)
	}
	return kbModel.DocChunk{
		Identifier:   identifier,
		DocumentName: "Doc",
		PageContent:  "default context",
	}, true, nil
}

func (m *MockChunkStore) SaveBatch(ctx context.Context, chunks []kbModel.DocChunk) error {
	if m.OnSaveBatch != nil {
		return m.OnSaveBatch(ctx, chunks)
	}
	return nil
}

func (m *MockChunkStore) DeleteBatch(ctx context.Context, identifiers []string) error {
	if m.OnDeleteBatch != nil {
		return m.OnDeleteBatch(ctx, identifiers)
	}
	return nil
}

func (m *MockChunkStore) ScanRange(ctx context.Context, start, end string) ([]string, error) {
	if m.OnScanRange != nil {
		return m.OnScanRange(ctx, start, end)
	}
	return nil, nil
}

// MockBlobStore implements blobStore.Store
type MockBlobStore struct {
	OnPut    func(ctx context.Context, name string, data []byte) error
	OnDelete func(ctx context.Context, name string) error
	OnList   func(ctx context.Context) ([]string, error)
}

func (m *MockBlobStore) Put(ctx context.Context, name string, data []byte) error {
	if m.OnPut != nil {
		return m.OnPut(ctx, name, data)
	}
	return nil
}

func (m *MockBlobStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	return nil, false, nil
}

func (m *MockBlobStore) Delete(ctx context.Context, name string) error {
	if m.OnDelete != nil {
		return m.OnDelete(ctx, name)
	}
	return nil
}

func (m *MockBlobStore) List(ctx context.Context) ([]string, error) {
	if m.OnList != nil {
		return m.OnList(ctx)
	}
	return []string{"Doc"}, nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Return dummy vectors matching chunk count
	return make([][]float32, len(chunks)), nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, question string, contextText string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, question string, contextText string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, question, contextText)
	}
	return "mocked llm response", nil
}
