package events

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/dmitrijs2005/contenthub/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func newTestConsumer(t *testing.T, upd StatusUpdater) (*Consumer, *fakeSQS) {
	t.Helper()
	client := &fakeSQS{}
	detector := NewDetector(upd, "landing-zone", testLogger())
	c := NewConsumer(context.Background(), client, detector, "https://sqs.local/queue", testLogger())
	t.Cleanup(func() { c.cancel() })
	return c, client
}

func message(handle, body string) types.Message {
	return types.Message{
		ReceiptHandle: aws.String(handle),
		Body:          aws.String(body),
	}
}

const objectCreatedBody = `{
	"detail-type": "Object Created",
	"detail": {
		"bucket": {"name": "landing-zone"},
		"object": {"key": "uploads/f1", "size": 42},
		"reason": "PutObject"
	}
}`

func TestHandleMessage_HandledIsDeleted(t *testing.T) {
	upd := &stubUpdater{}
	c, client := newTestConsumer(t, upd)

	c.handleMessage(context.Background(), message("m1", objectCreatedBody))

	require.Equal(t, []string{"m1"}, client.deleted)
	require.Len(t, upd.calls, 1)
	require.Equal(t, "f1", upd.calls[0].fileID)
}

func TestHandleMessage_DuplicateDeliveryIsDeleted(t *testing.T) {
	upd := &stubUpdater{}
	c, client := newTestConsumer(t, upd)

	ctx := context.Background()
	c.handleMessage(ctx, message("m1", objectCreatedBody))
	c.handleMessage(ctx, message("m2", objectCreatedBody))

	require.Equal(t, []string{"m1", "m2"}, client.deleted)
}

func TestHandleMessage_PoisonIsDeleted(t *testing.T) {
	upd := &stubUpdater{}
	c, client := newTestConsumer(t, upd)

	c.handleMessage(context.Background(), message("m1", "{not json"))

	require.Equal(t, []string{"m1"}, client.deleted)
	require.Empty(t, upd.calls)
}

func TestHandleMessage_NilBodyIsDeleted(t *testing.T) {
	upd := &stubUpdater{}
	c, client := newTestConsumer(t, upd)

	c.handleMessage(context.Background(), types.Message{ReceiptHandle: aws.String("m1")})

	require.Equal(t, []string{"m1"}, client.deleted)
}

func TestHandleMessage_TransientFailureLeftForRedelivery(t *testing.T) {
	upd := &stubUpdater{err: common.ErrorTransientStorage}
	c, client := newTestConsumer(t, upd)

	c.handleMessage(context.Background(), message("m1", objectCreatedBody))

	require.Empty(t, client.deleted)
}

func TestConsumer_Shutdown(t *testing.T) {
	upd := &stubUpdater{}
	c, _ := newTestConsumer(t, upd)

	c.Start()
	require.NoError(t, c.Shutdown(context.Background()))
}
