package memento

import (
	"context"
	"io"
)

// SessionResolver looks up the user behind the current request context.
// A nil user with a nil error means there is no session.
type SessionResolver interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// RecordStore inserts rows into the hosted relational store.
type RecordStore interface {
	InsertRecord(ctx context.Context, table string, record *ContentRecord) error
}

// BlobStore uploads objects into named buckets and issues their public URLs.
type BlobStore interface {
	// Upload stores the object under bucket/key
	Upload(ctx context.Context, bucket, key string, reader io.Reader, opts UploadOptions) error

	// PublicURL returns the retrieval URL of bucket/key
	PublicURL(bucket, key string) string
}

// BlobReader is implemented by blob stores that can serve objects back, used by
// the development blob route.
type BlobReader interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, string, error)
}

// EventSink receives notifications about completed operations.
type EventSink interface {
	// ContentSaved is fired after a record is inserted
	ContentSaved(ctx context.Context, record *ContentRecord) error

	// AssetUploaded is fired after an upload receives its public URL
	AssetUploaded(ctx context.Context, result *UploadResult) error
}

// SessionFunc adapts a function to SessionResolver.
type SessionFunc func(ctx context.Context) (*User, error)

func (f SessionFunc) CurrentUser(ctx context.Context) (*User, error) {
	return f(ctx)
}
