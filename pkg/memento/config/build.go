package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/backend/dynamodb"
	"github.com/tendant/memento/pkg/memento/backend/fs"
	"github.com/tendant/memento/pkg/memento/backend/memory"
	"github.com/tendant/memento/pkg/memento/backend/postgres"
	"github.com/tendant/memento/pkg/memento/backend/s3"
	"github.com/tendant/memento/pkg/memento/backend/supabase"
	"github.com/tendant/memento/pkg/memento/events/eventbridge"
	"github.com/tendant/memento/pkg/memento/game/quiz"
	"github.com/tendant/memento/pkg/memento/session"
)

// Services are the collaborators selected by a ServerConfig.
type Services struct {
	Sessions  memento.SessionResolver
	Records   memento.RecordStore
	Blobs     memento.BlobStore
	Events    memento.EventSink
	Questions []quiz.Question

	closers []func()
}

// Options returns the component options for the editor and the uploader.
func (s *Services) Options() []memento.Option {
	return []memento.Option{
		memento.WithSessions(s.Sessions),
		memento.WithRecordStore(s.Records),
		memento.WithBlobStore(s.Blobs),
		memento.WithEventSink(s.Events),
	}
}

// Close releases connections opened by Build.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// builder memoizes clients shared by several selectors.
type builder struct {
	cfg      *ServerConfig
	supabase *supabase.Backend
	aws      *aws.Config
}

// Build creates the collaborators named by the configuration.
func (c *ServerConfig) Build(ctx context.Context) (*Services, error) {
	b := &builder{cfg: c}
	services := &Services{}

	var err error
	if services.Questions, err = b.questions(); err != nil {
		return nil, err
	}
	if services.Sessions, err = b.sessions(); err != nil {
		return nil, fmt.Errorf("failed to build session provider: %w", err)
	}
	if services.Records, err = b.records(ctx, services); err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build record store: %w", err)
	}
	if services.Blobs, err = b.blobs(ctx); err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}
	if services.Events, err = b.events(ctx); err != nil {
		services.Close()
		return nil, fmt.Errorf("failed to build event sink: %w", err)
	}

	slog.Info("Services configured",
		"record_store", c.RecordStore,
		"blob_store", c.BlobStore,
		"session_provider", c.SessionProvider,
		"event_sink", c.EventSink,
		"questions", len(services.Questions))
	return services, nil
}

func (b *builder) questions() ([]quiz.Question, error) {
	if b.cfg.QuestionBank == "" {
		return quiz.DefaultQuestions(), nil
	}
	questions, err := quiz.LoadFile(b.cfg.QuestionBank)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}
	return questions, nil
}

func (b *builder) sessions() (memento.SessionResolver, error) {
	switch b.cfg.SessionProvider {
	case SessionNone:
		return session.Anonymous(), nil
	case SessionMemory:
		sessions := memory.NewSessions()
		for token, user := range b.cfg.Memory.SessionTokens {
			sessions.Add(token, user)
		}
		return sessions, nil
	case SessionSupabase:
		return b.supabaseBackend()
	case SessionJWT:
		return session.NewJWTResolver([]byte(b.cfg.JWT.Secret)), nil
	}
	return nil, fmt.Errorf("unsupported session provider: %s", b.cfg.SessionProvider)
}

func (b *builder) records(ctx context.Context, services *Services) (memento.RecordStore, error) {
	switch b.cfg.RecordStore {
	case StoreMemory:
		return memory.NewRecordStore(), nil
	case StoreSupabase:
		return b.supabaseBackend()
	case StorePostgres:
		repo, pool, err := postgres.NewWithPool(ctx, b.cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		services.closers = append(services.closers, pool.Close)
		if b.cfg.Postgres.AutoMigrate {
			if err := repo.EnsureSchema(ctx); err != nil {
				return nil, err
			}
		}
		return repo, nil
	case StoreDynamoDB:
		awsCfg, err := b.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		client := awsdynamodb.NewFromConfig(*awsCfg, func(o *awsdynamodb.Options) {
			if b.cfg.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(b.cfg.DynamoDB.Endpoint)
			}
		})
		return dynamodb.New(client, b.cfg.DynamoDB.Table)
	}
	return nil, fmt.Errorf("unsupported record store: %s", b.cfg.RecordStore)
}

func (b *builder) blobs(ctx context.Context) (memento.BlobStore, error) {
	switch b.cfg.BlobStore {
	case StoreMemory:
		return memory.NewBlobStore(b.cfg.Memory.BlobBaseURL), nil
	case StoreSupabase:
		return b.supabaseBackend()
	case StoreFS:
		return fs.New(fs.Config{BaseDir: b.cfg.FS.BaseDir, BaseURL: b.cfg.FS.BaseURL})
	case StoreS3:
		return s3.New(ctx, s3.Config{
			Region:                 b.cfg.AWS.Region,
			AccessKeyID:            b.cfg.AWS.AccessKeyID,
			SecretAccessKey:        b.cfg.AWS.SecretAccessKey,
			Endpoint:               b.cfg.S3.Endpoint,
			UsePathStyle:           b.cfg.S3.UsePathStyle,
			BucketPrefix:           b.cfg.S3.BucketPrefix,
			PublicBaseURL:          b.cfg.S3.PublicBaseURL,
			CreateBucketIfNotExist: b.cfg.S3.CreateBucketIfNotExist,
		})
	}
	return nil, fmt.Errorf("unsupported blob store: %s", b.cfg.BlobStore)
}

func (b *builder) events(ctx context.Context) (memento.EventSink, error) {
	switch b.cfg.EventSink {
	case SinkLog:
		return memento.NewLoggingEventSink(slog.Default()), nil
	case SinkNone:
		return memento.NewNoopEventSink(), nil
	case SinkEventBridge:
		awsCfg, err := b.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		client := awseventbridge.NewFromConfig(*awsCfg, func(o *awseventbridge.Options) {
			if b.cfg.EventBridge.Endpoint != "" {
				o.BaseEndpoint = aws.String(b.cfg.EventBridge.Endpoint)
			}
		})
		return eventbridge.NewPublisher(client, b.cfg.EventBridge.Bus), nil
	}
	return nil, fmt.Errorf("unsupported event sink: %s", b.cfg.EventSink)
}

func (b *builder) supabaseBackend() (*supabase.Backend, error) {
	if b.supabase != nil {
		return b.supabase, nil
	}
	backend, err := supabase.New(supabase.Config{URL: b.cfg.Supabase.URL, Key: b.cfg.Supabase.Key})
	if err != nil {
		return nil, err
	}
	b.supabase = backend
	return backend, nil
}

func (b *builder) awsConfig(ctx context.Context) (*aws.Config, error) {
	if b.aws != nil {
		return b.aws, nil
	}
	region := b.cfg.AWS.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if b.cfg.AWS.AccessKeyID != "" && b.cfg.AWS.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(b.cfg.AWS.AccessKeyID, b.cfg.AWS.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	b.aws = &cfg
	return b.aws, nil
}
