// Package s3 uploads assets to S3 or an S3-compatible service, one S3 bucket
// per memento bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tendant/memento/pkg/memento"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)

	// BucketPrefix is prepended to every memento bucket name, since S3 bucket
	// names are global.
	BucketPrefix string

	// PublicBaseURL replaces the S3 host in public URLs, e.g. a CDN in front
	// of the buckets. Objects are then addressed as {base}/{bucket}/{key}.
	PublicBaseURL string

	// MinIO/S3-compatible service options
	CreateBucketIfNotExist bool // Create the category buckets if they don't exist
}

// ObjectUploader is satisfied by *manager.Uploader.
type ObjectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// BucketAPI is the part of *s3.Client used to prepare buckets.
type BucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Backend is an S3-compatible implementation of memento.BlobStore
type Backend struct {
	uploader ObjectUploader
	buckets  BucketAPI
	config   Config
}

// New creates a new S3-compatible storage backend
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(config.Region)}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}
	client := s3.NewFromConfig(awsCfg, s3Options...)

	backend := NewWithClients(manager.NewUploader(client), client, config)
	if config.CreateBucketIfNotExist {
		for _, category := range memento.Categories() {
			if err := backend.EnsureBucket(ctx, category.Bucket()); err != nil {
				return nil, err
			}
		}
	}
	return backend, nil
}

// NewWithClients builds a backend from existing clients. buckets may be nil
// when EnsureBucket is not used.
func NewWithClients(uploader ObjectUploader, buckets BucketAPI, config Config) *Backend {
	if config.Region == "" {
		config.Region = "us-east-1"
	}
	return &Backend{uploader: uploader, buckets: buckets, config: config}
}

// BucketName returns the S3 bucket backing a memento bucket.
func (b *Backend) BucketName(bucket string) string {
	return b.config.BucketPrefix + bucket
}

func (b *Backend) Upload(ctx context.Context, bucket, key string, reader io.Reader, opts memento.UploadOptions) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.BucketName(bucket)),
		Key:    aws.String(key),
		Body:   reader,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return apiError(err)
	}
	return nil
}

// PublicURL returns the configured public base URL, the path-style endpoint
// URL, or the virtual-hosted AWS URL, in that order of preference.
func (b *Backend) PublicURL(bucket, key string) string {
	name := b.BucketName(bucket)
	switch {
	case b.config.PublicBaseURL != "":
		return strings.TrimSuffix(b.config.PublicBaseURL, "/") + "/" + name + "/" + key
	case b.config.Endpoint != "":
		return strings.TrimSuffix(b.config.Endpoint, "/") + "/" + name + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", name, b.config.Region, key)
}

// EnsureBucket creates the S3 bucket behind bucket if it doesn't exist
func (b *Backend) EnsureBucket(ctx context.Context, bucket string) error {
	if b.buckets == nil {
		return errors.New("bucket client not configured")
	}
	name := b.BucketName(bucket)

	_, err := b.buckets.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err == nil {
		return nil
	}

	// Handle multiple error types for MinIO compatibility
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) &&
		!strings.Contains(err.Error(), "NoSuchBucket") {
		return fmt.Errorf("failed to check bucket %s: %w", name, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if b.config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.config.Region),
		}
	}

	if _, err := b.buckets.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) || strings.Contains(err.Error(), "BucketAlreadyExists") {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", name, err)
	}
	return nil
}

// apiError reduces service errors to their message so that it can be shown
// to the user verbatim.
func apiError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &UploadError{Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage(), Err: err}
	}
	return err
}

// UploadError is a service side upload failure.
type UploadError struct {
	Code    string
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
