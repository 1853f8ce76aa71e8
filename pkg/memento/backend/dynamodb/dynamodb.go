// Package dynamodb stores content records as items of a single DynamoDB
// table, partitioned by owner.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/objectkey"
)

// PutItemAPI is the part of *dynamodb.Client used by the store.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// item is the stored shape: the record plus its keys.
type item struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	ID        string `dynamodbav:"id"`
	Table     string `dynamodbav:"table"`
	CreatedAt string `dynamodbav:"created_at"`
	memento.ContentRecord
}

// RecordStore implements memento.RecordStore on DynamoDB.
type RecordStore struct {
	client    PutItemAPI
	tableName string
	newID     func() string
	now       func() time.Time
}

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithIDFunc overrides the item id generator.
func WithIDFunc(f func() string) Option {
	return func(s *RecordStore) { s.newID = f }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *RecordStore) { s.now = now }
}

// New creates a store writing to tableName.
func New(client PutItemAPI, tableName string, opts ...Option) (*RecordStore, error) {
	if client == nil {
		return nil, errors.New("dynamodb client is required")
	}
	if tableName == "" {
		return nil, errors.New("dynamodb table name is required")
	}
	s := &RecordStore{
		client:    client,
		tableName: tableName,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// InsertRecord writes one item keyed USER#<owner> / <table>#<id>.
func (s *RecordStore) InsertRecord(ctx context.Context, table string, record *memento.ContentRecord) error {
	id := s.newID()
	it := item{
		PK:            "USER#" + objectkey.Folder(record.Owner()),
		SK:            fmt.Sprintf("%s#%s", table, id),
		ID:            id,
		Table:         table,
		CreatedAt:     s.now().UTC().Format(time.RFC3339),
		ContentRecord: *record,
	}

	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}
