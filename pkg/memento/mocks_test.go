package memento_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/tendant/memento/pkg/memento"
)

type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) InsertRecord(ctx context.Context, table string, record *memento.ContentRecord) error {
	args := m.Called(ctx, table, record)
	return args.Error(0)
}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Upload(ctx context.Context, bucket, key string, reader io.Reader, opts memento.UploadOptions) error {
	args := m.Called(ctx, bucket, key, reader, opts)
	return args.Error(0)
}

func (m *mockBlobStore) PublicURL(bucket, key string) string {
	args := m.Called(bucket, key)
	return args.String(0)
}

type mockEventSink struct {
	mock.Mock
}

func (m *mockEventSink) ContentSaved(ctx context.Context, record *memento.ContentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockEventSink) AssetUploaded(ctx context.Context, result *memento.UploadResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// blockingRecordStore holds InsertRecord open until release is closed.
type blockingRecordStore struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingRecordStore() *blockingRecordStore {
	return &blockingRecordStore{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingRecordStore) InsertRecord(ctx context.Context, table string, record *memento.ContentRecord) error {
	close(b.started)
	<-b.release
	return nil
}

type blockingBlobStore struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingBlobStore() *blockingBlobStore {
	return &blockingBlobStore{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingBlobStore) Upload(ctx context.Context, bucket, key string, reader io.Reader, opts memento.UploadOptions) error {
	close(b.started)
	<-b.release
	return nil
}

func (b *blockingBlobStore) PublicURL(bucket, key string) string {
	return "https://cdn.example.com/" + bucket + "/" + key
}

func userSession(id string) memento.SessionResolver {
	return memento.SessionFunc(func(ctx context.Context) (*memento.User, error) {
		return &memento.User{ID: id}, nil
	})
}
