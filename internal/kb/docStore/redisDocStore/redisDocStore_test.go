package redisDocStore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"kbase/internal/data/redisStore"
	"kbase/internal/domain/kbModel"
	"kbase/internal/kb/chunkId"
)

func newTestStore(t *testing.T) *Store {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(redisStore.NewTestStore(client))
}

func chunksFor(name string, contents ...string) []kbModel.DocChunk {
	chunks := make([]kbModel.DocChunk, len(contents))
	for i, c := range contents {
		chunks[i] = kbModel.DocChunk{
			Identifier:    chunkId.Make(name, i),
			DocumentName:  name,
			PageContent:   c,
			SequenceIndex: i,
		}
	}
	return chunks
}

func TestSaveGetRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveBatch(ctx, chunksFor("Doc", "alpha", "beta")); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	chunk, found, err := store.Get(ctx, "Doc-chunk1")
	if err != nil || !found {
		t.Fatalf("Get failed: found=%v err=%v", found, err)
	}
	if chunk.PageContent != "beta" || chunk.DocumentName != "Doc" || chunk.SequenceIndex != 1 {
		t.Errorf("record mismatch: %+v", chunk)
	}
}

func TestGet_Missing(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.Get(context.Background(), "ghost-chunk0")
	if err != nil {
		t.Fatalf("a missing chunk is absence, not failure: %v", err)
	}
	if found {
		t.Error("expected found=false for a missing chunk")
	}
}

func TestScanRange_CoversExactlyOneDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// "A" is a prefix of "A2" - the classic over-match hazard
	if err := store.SaveBatch(ctx, chunksFor("A", "a0", "a1", "a2")); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveBatch(ctx, chunksFor("A2", "x", "y")); err != nil {
		t.Fatal(err)
	}

	start, end := chunkId.Range("A")
	ids, err := store.ScanRange(ctx, start, end)
	if err != nil {
		t.Fatalf("ScanRange failed: %v", err)
	}

	if len(ids) != 3 {
		t.Fatalf("expected 3 identifiers for A, got %v", ids)
	}
	for _, id := range ids {
		owner, _ := chunkId.DocumentName(id)
		if owner != "A" {
			t.Errorf("range scan leaked a foreign identifier: %s", id)
		}
	}
}

func TestScanRange_EmptyResult(t *testing.T) {
	store := newTestStore(t)

	start, end := chunkId.Range("nothing-here")
	ids, err := store.ScanRange(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ScanRange failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty result, got %v", ids)
	}
}

func TestDeleteBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveBatch(ctx, chunksFor("Doc", "a", "b", "c")); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteBatch(ctx, []string{"Doc-chunk0", "Doc-chunk1", "Doc-chunk2"}); err != nil {
		t.Fatalf("DeleteBatch failed: %v", err)
	}

	start, end := chunkId.Range("Doc")
	ids, _ := store.ScanRange(ctx, start, end)
	if len(ids) != 0 {
		t.Errorf("identifiers survived deletion: %v", ids)
	}

	_, found, _ := store.Get(ctx, "Doc-chunk0")
	if found {
		t.Error("chunk record survived deletion")
	}
}

func TestDeleteBatch_Empty(t *testing.T) {
	store := newTestStore(t)
	if err := store.DeleteBatch(context.Background(), nil); err != nil {
		t.Errorf("deleting nothing should be a no-op, got %v", err)
	}
}
