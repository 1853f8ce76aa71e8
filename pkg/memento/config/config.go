// Package config loads the server configuration and builds the collaborators
// it selects.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Selector values.
const (
	StoreMemory     = "memory"
	StoreSupabase   = "supabase"
	StorePostgres   = "postgres"
	StoreDynamoDB   = "dynamodb"
	StoreS3         = "s3"
	StoreFS         = "fs"
	SessionNone     = "none"
	SessionMemory   = "memory"
	SessionSupabase = "supabase"
	SessionJWT      = "jwt"
	SinkLog         = "log"
	SinkNone        = "none"
	SinkEventBridge = "eventbridge"
)

var (
	recordStores    = []string{StoreMemory, StoreSupabase, StorePostgres, StoreDynamoDB}
	blobStores      = []string{StoreMemory, StoreSupabase, StoreS3, StoreFS}
	sessionBackends = []string{SessionNone, SessionMemory, SessionSupabase, SessionJWT}
	eventSinks      = []string{SinkLog, SinkNone, SinkEventBridge}
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:            "8080",
		Environment:     "development",
		LogLevel:        "info",
		RecordStore:     StoreMemory,
		BlobStore:       StoreMemory,
		SessionProvider: SessionNone,
		EventSink:       SinkLog,
		HTTP: HTTPConfig{
			WorkspaceCapacity: 1024,
			MaxUploadBytes:    32 << 20,
			RequestTimeout:    60 * time.Second,
		},
		Postgres: PostgresConfig{
			AutoMigrate: true,
		},
		FS: FSConfig{
			BaseDir: "./data/blobs",
		},
		DynamoDB: DynamoDBConfig{
			Table: "memento",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "memento",
			SampleRatio: 1,
		},
	}
}

// WithEnv applies environment variable overrides. Only variables that are set
// replace the current value.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML file and then the environment, which takes precedence.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
}

// Usage describes every environment variable the server reads.
func Usage() string {
	text, err := cleanenv.GetDescription(&ServerConfig{}, nil)
	if err != nil {
		return err.Error()
	}
	return text
}

// ServerConfig represents the memento server configuration.
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT" env-description:"HTTP listen port"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-description:"development, production, testing"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-description:"debug, info, warn or error"`

	RecordStore     string `yaml:"record_store" env:"RECORD_STORE" env-description:"memory, supabase, postgres or dynamodb"`
	BlobStore       string `yaml:"blob_store" env:"BLOB_STORE" env-description:"memory, supabase, s3 or fs"`
	SessionProvider string `yaml:"session_provider" env:"SESSION_PROVIDER" env-description:"none, memory, supabase or jwt"`
	EventSink       string `yaml:"event_sink" env:"EVENT_SINK" env-description:"log, none or eventbridge"`

	// QuestionBank is a YAML quiz file; empty uses the built-in bank.
	QuestionBank string `yaml:"question_bank" env:"QUESTION_BANK" env-description:"YAML quiz question file"`

	HTTP        HTTPConfig        `yaml:"http"`
	AWS         AWSConfig         `yaml:"aws"`
	Memory      MemoryConfig      `yaml:"memory"`
	FS          FSConfig          `yaml:"fs"`
	Supabase    SupabaseConfig    `yaml:"supabase"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	DynamoDB    DynamoDBConfig    `yaml:"dynamodb"`
	S3          S3Config          `yaml:"s3"`
	EventBridge EventBridgeConfig `yaml:"eventbridge"`
	JWT         JWTConfig         `yaml:"jwt"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// HTTPConfig holds router settings.
type HTTPConfig struct {
	AllowedOrigins    []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:"," env-description:"CORS origins, comma separated"`
	WorkspaceCapacity int           `yaml:"workspace_capacity" env:"WORKSPACE_CAPACITY" env-description:"client workspaces kept in memory"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-description:"multipart bytes kept in memory"`
	RequestTimeout    time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-description:"per request timeout"`
	APIKeySHA256      string        `yaml:"api_key_sha256" env:"API_KEY_SHA256" env-description:"hex SHA-256 of the API key; empty disables the check"`
}

// MemoryConfig configures the in-memory backends.
type MemoryConfig struct {
	BlobBaseURL string `yaml:"blob_base_url" env:"MEMORY_BLOB_BASE_URL" env-description:"public URL prefix of in-memory blobs"`
	// SessionTokens maps access tokens to user ids, as token:user pairs.
	SessionTokens map[string]string `yaml:"session_tokens" env:"MEMORY_SESSION_TOKENS" env-description:"token:user pairs, comma separated"`
}

// FSConfig configures the filesystem blob store.
type FSConfig struct {
	BaseDir string `yaml:"base_dir" env:"FS_BASE_DIR" env-description:"directory holding the buckets"`
	BaseURL string `yaml:"base_url" env:"FS_BASE_URL" env-description:"public URL prefix of stored files"`
}

type SupabaseConfig struct {
	URL string `yaml:"url" env:"SUPABASE_URL" env-description:"Supabase project URL"`
	Key string `yaml:"key" env:"SUPABASE_KEY" env-description:"Supabase anon or service key"`
}

type PostgresConfig struct {
	URL         string `yaml:"url" env:"DATABASE_URL" env-description:"postgres connection string"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE" env-description:"create the user_content table on start"`
}

// AWSConfig is shared by the AWS backed components.
type AWSConfig struct {
	Region          string `yaml:"region" env:"AWS_REGION" env-description:"AWS region"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
}

type DynamoDBConfig struct {
	Table    string `yaml:"table" env:"DYNAMODB_TABLE" env-description:"DynamoDB table for records"`
	Endpoint string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT" env-description:"custom DynamoDB endpoint"`
}

type S3Config struct {
	Endpoint               string `yaml:"endpoint" env:"S3_ENDPOINT" env-description:"S3 compatible endpoint"`
	UsePathStyle           bool   `yaml:"use_path_style" env:"S3_USE_PATH_STYLE"`
	BucketPrefix           string `yaml:"bucket_prefix" env:"S3_BUCKET_PREFIX" env-description:"prefix for the category bucket names"`
	PublicBaseURL          string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL" env-description:"public URL prefix, e.g. a CDN"`
	CreateBucketIfNotExist bool   `yaml:"create_bucket_if_not_exist" env:"S3_CREATE_BUCKETS"`
}

type EventBridgeConfig struct {
	Bus      string `yaml:"bus" env:"EVENTBRIDGE_BUS" env-description:"event bus name"`
	Endpoint string `yaml:"endpoint" env:"EVENTBRIDGE_ENDPOINT"`
}

type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET" env-description:"HS256 signing secret"`
}

type TelemetryConfig struct {
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-description:"OTLP gRPC endpoint; empty disables tracing"`
	Insecure    bool    `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_TRACES_SAMPLER_ARG"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if err := oneOf("record_store", c.RecordStore, recordStores); err != nil {
		return err
	}
	if err := oneOf("blob_store", c.BlobStore, blobStores); err != nil {
		return err
	}
	if err := oneOf("session_provider", c.SessionProvider, sessionBackends); err != nil {
		return err
	}
	if err := oneOf("event_sink", c.EventSink, eventSinks); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.usesSupabase() && (c.Supabase.URL == "" || c.Supabase.Key == "") {
		return errors.New("supabase url and key are required when a supabase backend is selected")
	}
	if c.RecordStore == StorePostgres && c.Postgres.URL == "" {
		return errors.New("database_url is required when using postgres")
	}
	if c.RecordStore == StoreDynamoDB && c.DynamoDB.Table == "" {
		return errors.New("dynamodb table is required when using dynamodb")
	}
	if c.SessionProvider == SessionJWT && c.JWT.Secret == "" {
		return errors.New("jwt secret is required when using jwt sessions")
	}
	if c.HTTP.APIKeySHA256 != "" {
		if digest, err := hex.DecodeString(c.HTTP.APIKeySHA256); err != nil || len(digest) != sha256.Size {
			return errors.New("api_key_sha256 must be a hex encoded SHA-256 digest")
		}
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be between 0 and 1, got %v", c.Telemetry.SampleRatio)
	}
	return nil
}

// Level returns the configured log level.
func (c *ServerConfig) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func (c *ServerConfig) usesSupabase() bool {
	return c.RecordStore == StoreSupabase || c.BlobStore == StoreSupabase || c.SessionProvider == SessionSupabase
}

func oneOf(name, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s must be one of %s, got %q", name, strings.Join(allowed, ", "), value)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
