package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no object exists under a key
	ErrNotFound = errors.New("object not found")

	// ErrAlreadyExists is returned by Put without overwrite when the key is taken
	ErrAlreadyExists = errors.New("object already exists")
)

// PutOptions controls how Put treats an existing object
type PutOptions struct {
	Overwrite   bool
	ContentType string
}

// BlobStore stores generated documents by key. Signed URLs are bearer
// capabilities; callers must authorize before asking for one.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, opts PutOptions) error
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// InvoiceKey is the object key of an invoice document
func InvoiceKey(serialNumber string) string {
	return serialNumber + ".pdf"
}

// StorageError wraps a failed storage operation
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
