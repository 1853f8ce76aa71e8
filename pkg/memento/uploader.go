package memento

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Uploader forwards a single selected file to the bucket of its category.
type Uploader struct {
	*deps
	guard inFlight
}

// NewUploader creates an uploader. A blob store is required.
func NewUploader(options ...Option) (*Uploader, error) {
	d := newDeps(options)
	if d.blobs == nil {
		return nil, fmt.Errorf("%w: blob store is required", ErrNotConfigured)
	}
	return &Uploader{deps: d}, nil
}

// Uploading reports whether an upload is outstanding; the file input is
// disabled while it is true.
func (u *Uploader) Uploading() bool {
	return u.guard.Busy()
}

// Upload sends the first of files to the bucket mapped from category and
// returns its public URL and preview. The category is taken as given; the
// file content is not checked against it.
func (u *Uploader) Upload(ctx context.Context, category Category, files []File) (*UploadResult, error) {
	bucket := category.Bucket()
	if bucket == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if len(files) == 0 {
		return nil, ErrNoFile
	}
	file := files[0]

	if !u.guard.acquire() {
		return nil, ErrUploadInFlight
	}
	defer u.guard.release()

	ctx, span := u.tracer.Start(ctx, "memento.Uploader.Upload")
	defer span.End()

	var owner string
	if user := u.currentUser(ctx); user != nil {
		owner = user.ID
	}
	key := u.keys.GenerateKey(owner, file.Name)
	span.SetAttributes(
		attribute.String("memento.bucket", bucket),
		attribute.String("memento.key", key),
	)

	err := u.blobs.Upload(ctx, bucket, key, file.Body, UploadOptions{
		ContentType: file.MimeType,
		Size:        file.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Error uploading file", "bucket", bucket, "key", key, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, &RemoteError{
			Op:     "upload",
			Notice: fmt.Sprintf("%s: %s", NoticeUploadFailed, err.Error()),
			Err:    err,
		}
	}

	publicURL := u.blobs.PublicURL(bucket, key)
	result := &UploadResult{
		Category:  category,
		Bucket:    bucket,
		Key:       key,
		FileName:  file.Name,
		PublicURL: publicURL,
		Preview:   NewPreview(category, publicURL),
	}

	if err := u.events.AssetUploaded(ctx, result); err != nil {
		slog.WarnContext(ctx, "Failed to publish asset uploaded event", "error", err)
	}

	return result, nil
}
