// Package eventbridge publishes memento events to an AWS EventBridge bus.
package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/tendant/memento/pkg/memento"
)

// Source is the EventBridge source of every published event.
const Source = "memento"

// Detail types.
const (
	DetailContentSaved  = "ContentSaved"
	DetailAssetUploaded = "AssetUploaded"
)

// PutEventsAPI is the part of *eventbridge.Client used by the publisher.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher implements memento.EventSink.
type Publisher struct {
	client       PutEventsAPI
	eventBusName string
	now          func() time.Time
}

// NewPublisher creates a publisher for eventBusName. An empty name targets the
// default bus.
func NewPublisher(client PutEventsAPI, eventBusName string) *Publisher {
	if eventBusName == "" {
		eventBusName = "default"
	}
	return &Publisher{client: client, eventBusName: eventBusName, now: time.Now}
}

type contentSavedDetail struct {
	Table       string              `json:"table"`
	Owner       string              `json:"owner,omitempty"`
	Title       string              `json:"title"`
	ContentType memento.ContentType `json:"content_type"`
	Tags        []string            `json:"tags"`
	IsPrivate   bool                `json:"is_private"`
}

type assetUploadedDetail struct {
	Category  memento.Category `json:"category"`
	Bucket    string           `json:"bucket"`
	Key       string           `json:"key"`
	FileName  string           `json:"file_name"`
	PublicURL string           `json:"public_url"`
}

// ContentSaved publishes the record metadata; the content body is not sent.
func (p *Publisher) ContentSaved(ctx context.Context, record *memento.ContentRecord) error {
	return p.publish(ctx, DetailContentSaved, contentSavedDetail{
		Table:       memento.TableUserContent,
		Owner:       record.Owner(),
		Title:       record.Title,
		ContentType: record.ContentType,
		Tags:        record.Tags,
		IsPrivate:   record.IsPrivate,
	})
}

func (p *Publisher) AssetUploaded(ctx context.Context, result *memento.UploadResult) error {
	return p.publish(ctx, DetailAssetUploaded, assetUploadedDetail{
		Category:  result.Category,
		Bucket:    result.Bucket,
		Key:       result.Key,
		FileName:  result.FileName,
		PublicURL: result.PublicURL,
	})
}

func (p *Publisher) publish(ctx context.Context, detailType string, detail any) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", detailType, err)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			EventBusName: aws.String(p.eventBusName),
			Source:       aws.String(Source),
			DetailType:   aws.String(detailType),
			Detail:       aws.String(string(data)),
			Time:         aws.Time(p.now()),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to publish events to EventBridge: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for _, entry := range result.Entries {
			if entry.ErrorCode != nil {
				slog.ErrorContext(ctx, "Failed to publish event",
					"detail_type", detailType,
					"error_code", aws.ToString(entry.ErrorCode),
					"error_message", aws.ToString(entry.ErrorMessage))
			}
		}
		return errors.New("eventbridge rejected " + detailType + " event")
	}
	return nil
}
