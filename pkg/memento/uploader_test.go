package memento_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/objectkey"
)

func photo() memento.File {
	return memento.File{Name: "beach.jpg", Size: 5, MimeType: "image/jpeg", Body: strings.NewReader("bytes")}
}

func TestNewUploader_RequiresBlobStore(t *testing.T) {
	uploader, err := memento.NewUploader()
	assert.ErrorIs(t, err, memento.ErrNotConfigured)
	assert.Nil(t, uploader)
}

func TestUploader_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads to the category bucket under the owner folder", func(t *testing.T) {
		store := new(mockBlobStore)
		store.On("Upload", mock.Anything, "memory-photos", "user-1/tok.jpg", mock.Anything, memento.UploadOptions{
			ContentType: "image/jpeg",
			Size:        5,
		}).Return(nil).Once()
		store.On("PublicURL", "memory-photos", "user-1/tok.jpg").Return("https://cdn.example.com/memory-photos/user-1/tok.jpg").Once()
		sink := new(mockEventSink)
		sink.On("AssetUploaded", mock.Anything, mock.Anything).Return(nil).Once()

		uploader, err := memento.NewUploader(
			memento.WithBlobStore(store),
			memento.WithSessions(userSession("user-1")),
			memento.WithKeyGenerator(objectkey.StaticGenerator{TokenValue: "tok"}),
			memento.WithEventSink(sink),
		)
		require.NoError(t, err)

		result, err := uploader.Upload(ctx, memento.CategoryImage, []memento.File{photo()})
		require.NoError(t, err)
		assert.Equal(t, "memory-photos", result.Bucket)
		assert.Equal(t, "user-1/tok.jpg", result.Key)
		assert.Equal(t, "beach.jpg", result.FileName)
		assert.Equal(t, "https://cdn.example.com/memory-photos/user-1/tok.jpg", result.PublicURL)
		assert.Equal(t, memento.PreviewImage, result.Preview.Kind)
		store.AssertExpectations(t)
		sink.AssertExpectations(t)
	})

	t.Run("anonymous uploads use the anonymous folder", func(t *testing.T) {
		store := new(mockBlobStore)
		store.On("Upload", mock.Anything, "user-documents", "anonymous/tok.pdf", mock.Anything, mock.Anything).Return(nil).Once()
		store.On("PublicURL", "user-documents", "anonymous/tok.pdf").Return("https://cdn.example.com/doc").Once()

		uploader, err := memento.NewUploader(
			memento.WithBlobStore(store),
			memento.WithKeyGenerator(objectkey.StaticGenerator{TokenValue: "tok"}),
		)
		require.NoError(t, err)

		file := memento.File{Name: "letter.pdf", Body: strings.NewReader("%PDF")}
		result, err := uploader.Upload(ctx, memento.CategoryDocument, []memento.File{file})
		require.NoError(t, err)
		assert.Equal(t, memento.PreviewNone, result.Preview.Kind)
		store.AssertExpectations(t)
	})

	t.Run("category is not checked against the file", func(t *testing.T) {
		store := new(mockBlobStore)
		store.On("Upload", mock.Anything, "music-files", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		store.On("PublicURL", "music-files", mock.Anything).Return("https://cdn.example.com/a").Once()

		uploader, err := memento.NewUploader(memento.WithBlobStore(store))
		require.NoError(t, err)

		result, err := uploader.Upload(ctx, memento.CategoryAudio, []memento.File{photo()})
		require.NoError(t, err)
		assert.Equal(t, memento.PreviewAudio, result.Preview.Kind)
	})

	t.Run("only the first file is uploaded", func(t *testing.T) {
		store := new(mockBlobStore)
		store.On("Upload", mock.Anything, "memory-photos", "anonymous/tok.jpg", mock.Anything, mock.Anything).Return(nil).Once()
		store.On("PublicURL", mock.Anything, mock.Anything).Return("https://cdn.example.com/a").Once()

		uploader, err := memento.NewUploader(
			memento.WithBlobStore(store),
			memento.WithKeyGenerator(objectkey.StaticGenerator{TokenValue: "tok"}),
		)
		require.NoError(t, err)

		second := memento.File{Name: "other.png", Body: strings.NewReader("x")}
		result, err := uploader.Upload(ctx, memento.CategoryImage, []memento.File{photo(), second})
		require.NoError(t, err)
		assert.Equal(t, "beach.jpg", result.FileName)
		store.AssertNumberOfCalls(t, "Upload", 1)
	})

	t.Run("no file makes no remote call", func(t *testing.T) {
		store := new(mockBlobStore)
		uploader, err := memento.NewUploader(memento.WithBlobStore(store))
		require.NoError(t, err)

		_, err = uploader.Upload(ctx, memento.CategoryImage, nil)
		assert.ErrorIs(t, err, memento.ErrNoFile)
		store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		store := new(mockBlobStore)
		uploader, err := memento.NewUploader(memento.WithBlobStore(store))
		require.NoError(t, err)

		_, err = uploader.Upload(ctx, memento.Category("video"), []memento.File{photo()})
		assert.ErrorIs(t, err, memento.ErrUnknownCategory)
	})

	t.Run("store failure carries the raw message", func(t *testing.T) {
		store := new(mockBlobStore)
		store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("Bucket not found")).Once()

		uploader, err := memento.NewUploader(memento.WithBlobStore(store))
		require.NoError(t, err)

		_, err = uploader.Upload(ctx, memento.CategoryImage, []memento.File{photo()})
		var remote *memento.RemoteError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, "Error uploading file: Bucket not found", remote.Notice)
		assert.False(t, uploader.Uploading())
		store.AssertNotCalled(t, "PublicURL", mock.Anything, mock.Anything)
	})
}

func TestUploader_SingleUploadInFlight(t *testing.T) {
	store := newBlockingBlobStore()
	uploader, err := memento.NewUploader(memento.WithBlobStore(store))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := uploader.Upload(context.Background(), memento.CategoryImage, []memento.File{photo()})
		done <- err
	}()

	<-store.started
	assert.True(t, uploader.Uploading())

	_, err = uploader.Upload(context.Background(), memento.CategoryImage, []memento.File{photo()})
	assert.ErrorIs(t, err, memento.ErrUploadInFlight)

	close(store.release)
	require.NoError(t, <-done)
	assert.False(t, uploader.Uploading())
}
