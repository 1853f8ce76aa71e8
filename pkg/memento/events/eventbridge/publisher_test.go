package eventbridge_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tendant/memento/pkg/memento"
	ebsink "github.com/tendant/memento/pkg/memento/events/eventbridge"
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*eventbridge.PutEventsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestContentSaved(t *testing.T) {
	client := new(mockEventBridge)
	var captured *eventbridge.PutEventsInput
	client.On("PutEvents", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*eventbridge.PutEventsInput) }).
		Return(&eventbridge.PutEventsOutput{}, nil).Once()

	owner := "user-1"
	publisher := ebsink.NewPublisher(client, "memento-bus")
	err := publisher.ContentSaved(context.Background(), &memento.ContentRecord{
		UserID:      &owner,
		Title:       "Trip",
		ContentType: memento.ContentTypeStory,
		Content:     "private body",
		Tags:        []string{"beach"},
		IsPrivate:   true,
	})
	require.NoError(t, err)

	require.Len(t, captured.Entries, 1)
	entry := captured.Entries[0]
	assert.Equal(t, "memento-bus", aws.ToString(entry.EventBusName))
	assert.Equal(t, ebsink.Source, aws.ToString(entry.Source))
	assert.Equal(t, ebsink.DetailContentSaved, aws.ToString(entry.DetailType))

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "user-1", detail["owner"])
	assert.Equal(t, "Trip", detail["title"])
	assert.NotContains(t, aws.ToString(entry.Detail), "private body")
}

func TestAssetUploaded(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		return aws.ToString(in.Entries[0].DetailType) == ebsink.DetailAssetUploaded &&
			aws.ToString(in.Entries[0].EventBusName) == "default"
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	publisher := ebsink.NewPublisher(client, "")
	err := publisher.AssetUploaded(context.Background(), &memento.UploadResult{Bucket: memento.BucketPhotos, Key: "k"})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublish_Failures(t *testing.T) {
	t.Run("rejected entry", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("oops")}},
		}, nil).Once()

		err := ebsink.NewPublisher(client, "").AssetUploaded(context.Background(), &memento.UploadResult{})
		assert.ErrorContains(t, err, "rejected")
	})

	t.Run("transport error", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("no route")).Once()

		err := ebsink.NewPublisher(client, "").AssetUploaded(context.Background(), &memento.UploadResult{})
		assert.ErrorContains(t, err, "no route")
	})
}
