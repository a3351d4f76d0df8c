package redisDocStore

import (
	"context"
	"encoding/json"
	"fmt"

	"kbase/internal/data/redisStore"
	"kbase/internal/domain/kbModel"
	"kbase/pkg/logger_i"
)

const (
	chunkKeyPrefix = "chunk:"
	// sorted set mirroring every chunk identifier; gives the ordered key
	// space that ZRANGEBYLEX scans over
	chunkIndexKey = "chunk-ids"
)

type Store struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewStore(store *redisStore.Store) *Store {
	return &Store{
		store:  store,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func (s *Store) SaveBatch(ctx context.Context, chunks []kbModel.DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	log := s.logger.With("traceId", ctx.Value("traceId"))

	entries := make(map[string]interface{}, len(chunks))
	identifiers := make([]string, len(chunks))
	for i, chunk := range chunks {
		data, err := json.Marshal(chunk)
		if err != nil {
			return fmt.Errorf("marshalling chunk %s: %w", chunk.Identifier, err)
		}
		entries[chunkKeyPrefix+chunk.Identifier] = data
		identifiers[i] = chunk.Identifier
	}

	if err := s.store.SetBatch(ctx, entries, 0); err != nil {
		return fmt.Errorf("%w: saving chunk batch: %v", kbModel.ErrStoreUnavailable, err)
	}
	if err := s.store.ZAddLex(ctx, chunkIndexKey, identifiers...); err != nil {
		return fmt.Errorf("%w: indexing chunk batch: %v", kbModel.ErrStoreUnavailable, err)
	}

	log.Debug("Saved chunk batch", "count", len(chunks))
	return nil
}

func (s *Store) Get(ctx context.Context, identifier string) (kbModel.DocChunk, bool, error) {
	var chunk kbModel.DocChunk

	val, err := s.store.Get(ctx, chunkKeyPrefix+identifier)
	if s.store.IsNil(err) {
		return chunk, false, nil
	} else if err != nil {
		return chunk, false, fmt.Errorf("%w: reading chunk %s: %v", kbModel.ErrStoreUnavailable, identifier, err)
	}

	if err := json.Unmarshal([]byte(val), &chunk); err != nil {
		return chunk, false, fmt.Errorf("unmarshalling chunk %s: %w", identifier, err)
	}
	return chunk, true, nil
}

func (s *Store) DeleteBatch(ctx context.Context, identifiers []string) error {
	if len(identifiers) == 0 {
		return nil
	}
	log := s.logger.With("traceId", ctx.Value("traceId"))

	keys := make([]string, len(identifiers))
	for i, id := range identifiers {
		keys[i] = chunkKeyPrefix + id
	}

	if err := s.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("%w: deleting chunk batch: %v", kbModel.ErrStoreUnavailable, err)
	}
	if err := s.store.ZRem(ctx, chunkIndexKey, identifiers...); err != nil {
		return fmt.Errorf("%w: unindexing chunk batch: %v", kbModel.ErrStoreUnavailable, err)
	}

	log.Debug("Deleted chunk batch", "count", len(identifiers))
	return nil
}

func (s *Store) ScanRange(ctx context.Context, start string, end string) ([]string, error) {
	identifiers, err := s.store.ZRangeByLex(ctx, chunkIndexKey, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning [%s, %s): %v", kbModel.ErrStoreUnavailable, start, end, err)
	}
	return identifiers, nil
}
