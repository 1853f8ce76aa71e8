// Package fs stores uploaded assets on the local filesystem, one directory
// per bucket.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/memento/pkg/memento"
)

// DefaultBaseURL matches the blob routes served by the API.
const DefaultBaseURL = "/api/v1/blobs/"

// ErrObjectNotFound is returned by Open for missing objects.
var ErrObjectNotFound = errors.New("object not found")

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
	BaseURL string // Prefix of public URLs; defaults to DefaultBaseURL
}

// Backend is a filesystem implementation of memento.BlobStore and
// memento.BlobReader.
type Backend struct {
	baseDir string
	baseURL string
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Backend{baseDir: config.BaseDir, baseURL: baseURL}, nil
}

// Upload writes the object through a temporary file so readers never see a
// partial object.
func (b *Backend) Upload(ctx context.Context, bucket, key string, reader io.Reader, opts memento.UploadOptions) error {
	filePath, err := b.path(bucket, key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}
	return nil
}

func (b *Backend) PublicURL(bucket, key string) string {
	return b.baseURL + bucket + "/" + key
}

// Open returns the object and a content type guessed from its extension or,
// failing that, its first bytes.
func (b *Backend) Open(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	filePath, err := b.path(bucket, key)
	if err != nil {
		return nil, "", ErrObjectNotFound
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, "", ErrObjectNotFound
	} else if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		buffer := make([]byte, 512)
		n, _ := file.Read(buffer)
		contentType = http.DetectContentType(buffer[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, "", fmt.Errorf("failed to rewind file: %w", err)
		}
	}
	return file, contentType, nil
}

// path resolves bucket/key below the base directory and rejects anything that
// would escape it.
func (b *Backend) path(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	rel := filepath.Join(bucket, filepath.FromSlash(key))
	if !filepath.IsLocal(rel) || !strings.HasPrefix(rel, bucket+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(b.baseDir, rel), nil
}
