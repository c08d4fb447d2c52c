package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

func approvedEvent() Event {
	return Event{
		Type:            EventRequestApproved,
		RequestID:       "7",
		StudentName:     "Asha Rao",
		CertificateType: "Study Certificate",
		Status:          "Approved",
		ActedBy:         "admin",
		DownloadURL:     "/certificates/asharao-study.pdf",
		Timestamp:       time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestMultiDeliversToEveryChannel(t *testing.T) {
	ctx := context.Background()
	event := approvedEvent()

	failing := new(MockPublisher)
	failing.On("Publish", ctx, event).Return(errors.New("boom"))
	ok := new(MockPublisher)
	ok.On("Publish", ctx, event).Return(nil)

	m := NewMulti(nil).Add("sns", failing).Add("websocket", ok)
	assert.Equal(t, []string{"sns", "websocket"}, m.Channels())

	err := m.Publish(ctx, event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sns: boom")

	failing.AssertExpectations(t)
	ok.AssertExpectations(t)
}

func TestMultiWithoutChannels(t *testing.T) {
	assert.NoError(t, NewMulti(nil).Publish(context.Background(), approvedEvent()))
	assert.NoError(t, Nop{}.Publish(context.Background(), approvedEvent()))
}

func TestSNSPublisher(t *testing.T) {
	ctx := context.Background()
	client := new(MockSNS)

	client.On("Publish", ctx, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var got Event
		if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &got); err != nil {
			return false
		}
		return aws.ToString(in.TopicArn) == "arn:aws:sns:us-east-1:123:certs" &&
			aws.ToString(in.Subject) == "Certificate request approved" &&
			aws.ToString(in.MessageAttributes["event_type"].StringValue) == EventRequestApproved &&
			got.RequestID == "7"
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil)

	p := NewSNSPublisher(client, "arn:aws:sns:us-east-1:123:certs")
	require.NoError(t, p.Publish(ctx, approvedEvent()))
	client.AssertExpectations(t)
}

func TestSNSPublisherError(t *testing.T) {
	ctx := context.Background()
	client := new(MockSNS)
	client.On("Publish", ctx, mock.Anything).Return(nil, errors.New("throttled"))

	err := NewSNSPublisher(client, "arn").Publish(ctx, approvedEvent())
	assert.ErrorContains(t, err, "throttled")
}

func TestEventSubject(t *testing.T) {
	assert.Equal(t, "Certificate request submitted", Event{Type: EventRequestSubmitted}.Subject())
	assert.Equal(t, "Certificate request rejected", Event{Type: EventRequestRejected}.Subject())
	assert.Equal(t, "Certificate request updated", Event{Type: "other"}.Subject())
}
