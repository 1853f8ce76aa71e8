package memento

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// ContentSaved does nothing and returns nil
func (n *NoopEventSink) ContentSaved(ctx context.Context, record *ContentRecord) error {
	return nil
}

// AssetUploaded does nothing and returns nil
func (n *NoopEventSink) AssetUploaded(ctx context.Context, result *UploadResult) error {
	return nil
}

// LoggingEventSink logs events but takes no other action
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink. A nil logger uses slog.Default().
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

// ContentSaved logs the saved record
func (l *LoggingEventSink) ContentSaved(ctx context.Context, record *ContentRecord) error {
	l.logger.InfoContext(ctx, "Content saved",
		"title", record.Title,
		"content_type", record.ContentType,
		"tags", len(record.Tags),
		"owner", record.Owner(),
		"private", record.IsPrivate)
	return nil
}

// AssetUploaded logs the uploaded asset
func (l *LoggingEventSink) AssetUploaded(ctx context.Context, result *UploadResult) error {
	l.logger.InfoContext(ctx, "Asset uploaded",
		"bucket", result.Bucket,
		"key", result.Key,
		"category", result.Category)
	return nil
}

// anonymousSessions resolves every context to "no user".
type anonymousSessions struct{}

func (anonymousSessions) CurrentUser(ctx context.Context) (*User, error) {
	return nil, nil
}

// AnonymousSessions returns a SessionResolver with no sessions.
func AnonymousSessions() SessionResolver {
	return anonymousSessions{}
}
