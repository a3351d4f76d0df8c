package redisBlobStore

import (
	"context"
	"fmt"

	"kbase/internal/data/redisStore"
	"kbase/internal/domain/kbModel"
	"kbase/pkg/logger_i"
)

const (
	// same object-key convention as the original upload bucket
	blobKeyPrefix = "blob:documents/raw_uploaded/"
	blobNamesKey  = "blob-names"
)

type Store struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewStore(store *redisStore.Store) *Store {
	return &Store{
		store:  store,
		logger: logger_i.NewLogger("BlobStore"),
	}
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	log := s.logger.With("traceId", ctx.Value("traceId"))

	// overwrites any existing blob of the same name, by contract
	if err := s.store.Set(ctx, blobKeyPrefix+name, data, 0); err != nil {
		return fmt.Errorf("%w: storing blob %s: %v", kbModel.ErrStoreUnavailable, name, err)
	}
	if err := s.store.ZAddLex(ctx, blobNamesKey, name); err != nil {
		return fmt.Errorf("%w: listing blob %s: %v", kbModel.ErrStoreUnavailable, name, err)
	}

	log.Debug("Stored raw upload", "name", name, "bytes", len(data))
	return nil
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, bool, error) {
	data, err := s.store.GetBytes(ctx, blobKeyPrefix+name)
	if s.store.IsNil(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("%w: reading blob %s: %v", kbModel.ErrStoreUnavailable, name, err)
	}
	return data, true, nil
}

// Delete removes the blob and its listing entry. Deleting a name that was
// never stored is a successful no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.store.Del(ctx, blobKeyPrefix+name); err != nil {
		return fmt.Errorf("%w: deleting blob %s: %v", kbModel.ErrStoreUnavailable, name, err)
	}
	if err := s.store.ZRem(ctx, blobNamesKey, name); err != nil {
		return fmt.Errorf("%w: unlisting blob %s: %v", kbModel.ErrStoreUnavailable, name, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.store.ZRangeAll(ctx, blobNamesKey)
	if err != nil {
		return nil, fmt.Errorf("%w: listing blobs: %v", kbModel.ErrStoreUnavailable, err)
	}
	return names, nil
}
