package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, params)
	return &sqs.SendMessageOutput{}, nil
}

func TestPublisherSend(t *testing.T) {
	mock := &mockSQS{}
	p := NewPublisher(mock, "https://sqs.local/orders")

	err := p.Send(context.Background(), `{"type":"order.created"}`, map[string]string{
		"event_type":     "order.created",
		"correlation_id": "",
	})
	require.NoError(t, err)
	require.Len(t, mock.inputs, 1)

	in := mock.inputs[0]
	assert.Equal(t, "https://sqs.local/orders", *in.QueueUrl)
	assert.Equal(t, `{"type":"order.created"}`, *in.MessageBody)
	assert.Len(t, in.MessageAttributes, 1)
	assert.Equal(t, "order.created", *in.MessageAttributes["event_type"].StringValue)
}

func TestPublisherSend_Error(t *testing.T) {
	p := NewPublisher(&mockSQS{err: errors.New("boom")}, "q")
	err := p.Send(context.Background(), "{}", nil)
	assert.ErrorContains(t, err, "send message")
}
