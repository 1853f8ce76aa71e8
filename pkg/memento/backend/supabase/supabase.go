// Package supabase adapts a hosted Supabase project to the memento
// collaborator interfaces: auth sessions, the user_content table and storage
// buckets.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"

	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/session"
)

// Config holds the project endpoint and key.
type Config struct {
	URL string
	Key string
}

// UserFetcher resolves an access token to the auth user id.
type UserFetcher interface {
	FetchUser(token string) (string, error)
}

// RowInserter inserts one row into a table.
type RowInserter interface {
	InsertRow(table string, row any) error
}

// ObjectStorage is the subset of the storage client used for uploads.
// *storage_go.Client satisfies it.
type ObjectStorage interface {
	UploadFile(bucketID, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketID, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// Backend implements memento.SessionResolver, memento.RecordStore and
// memento.BlobStore. The Supabase client API has no context parameter, so
// cancellation is not propagated to remote calls.
type Backend struct {
	users   UserFetcher
	rows    RowInserter
	storage ObjectStorage
}

// New connects to the Supabase project described by cfg.
func New(cfg Config) (*Backend, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	client, err := supa.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *supa.Client) *Backend {
	return NewWithParts(authFetcher{client: client}, tableInserter{client: client}, client.Storage)
}

// NewWithParts assembles a backend from its parts; used with fakes in tests.
func NewWithParts(users UserFetcher, rows RowInserter, storage ObjectStorage) *Backend {
	return &Backend{users: users, rows: rows, storage: storage}
}

func (b *Backend) CurrentUser(ctx context.Context) (*memento.User, error) {
	token := session.AccessTokenFromContext(ctx)
	if token == "" {
		return nil, nil
	}
	id, err := b.users.FetchUser(token)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if id == "" {
		return nil, nil
	}
	return &memento.User{ID: id}, nil
}

func (b *Backend) InsertRecord(ctx context.Context, table string, record *memento.ContentRecord) error {
	if err := b.rows.InsertRow(table, record); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Upload stores the object without upsert; an existing key is an error.
func (b *Backend) Upload(ctx context.Context, bucket, key string, reader io.Reader, opts memento.UploadOptions) error {
	var fileOpts storage_go.FileOptions
	if opts.ContentType != "" {
		contentType := opts.ContentType
		fileOpts.ContentType = &contentType
	}
	if _, err := b.storage.UploadFile(bucket, key, reader, fileOpts); err != nil {
		return err
	}
	return nil
}

func (b *Backend) PublicURL(bucket, key string) string {
	return b.storage.GetPublicUrl(bucket, key).SignedURL
}

type authFetcher struct {
	client *supa.Client
}

func (a authFetcher) FetchUser(token string) (string, error) {
	user, err := a.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return "", err
	}
	return user.ID.String(), nil
}

type tableInserter struct {
	client *supa.Client
}

func (t tableInserter) InsertRow(table string, row any) error {
	_, _, err := t.client.From(table).Insert(row, false, "", "", "").Execute()
	return err
}
