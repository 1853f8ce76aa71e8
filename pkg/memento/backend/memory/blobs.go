package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/tendant/memento/pkg/memento"
)

// ErrObjectNotFound is returned by Open for unknown objects.
var ErrObjectNotFound = errors.New("object not found")

// DefaultBaseURL is the public URL prefix used when none is configured. It
// points at the development blob route of the HTTP server.
const DefaultBaseURL = "/api/v1/blobs/"

type object struct {
	data        []byte
	contentType string
}

// BlobStore keeps uploaded objects in memory, keyed by bucket and key.
type BlobStore struct {
	mu      sync.RWMutex
	baseURL string
	buckets map[string]map[string]object
	err     error
}

// NewBlobStore creates an in-memory blob store whose public URLs start with
// baseURL. An empty baseURL uses DefaultBaseURL.
func NewBlobStore(baseURL string) *BlobStore {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &BlobStore{
		baseURL: baseURL,
		buckets: make(map[string]map[string]object),
	}
}

// Upload reads reader fully and stores it under bucket/key.
func (b *BlobStore) Upload(ctx context.Context, bucket, key string, reader io.Reader, opts memento.UploadOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return b.err
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if b.buckets[bucket] == nil {
		b.buckets[bucket] = make(map[string]object)
	}
	b.buckets[bucket][key] = object{data: data, contentType: contentType}
	return nil
}

func (b *BlobStore) PublicURL(bucket, key string) string {
	return b.baseURL + bucket + "/" + key
}

// Open returns the stored object and its content type.
func (b *BlobStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.buckets[bucket][key]
	if !ok {
		return nil, "", ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

// Keys returns the keys stored in bucket.
func (b *BlobStore) Keys(bucket string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.buckets[bucket]))
	for k := range b.buckets[bucket] {
		keys = append(keys, k)
	}
	return keys
}

// FailWith makes subsequent uploads return err; nil restores normal behaviour.
func (b *BlobStore) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}
