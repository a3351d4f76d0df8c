package blobStore

import "context"

// Store keeps the raw uploaded files under a key derived from the document
// name. Delete swallows a missing blob so repeated deletions stay idempotent.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}
