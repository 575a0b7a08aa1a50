package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/dmitrijs2005/contenthub/internal/logging"
	"github.com/sethvargo/go-retry"
)

// sqsAPI is the subset of the SQS client used by the consumer.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Consumer long-polls the notification queue and feeds the detector.
//
// Delivery is at-least-once: a message is deleted once the detector
// reports it handled (including poison messages, which would never
// succeed), and left on the queue for redelivery after its visibility
// timeout when handling failed transiently.
type Consumer struct {
	client   sqsAPI
	detector *Detector
	queueURL string
	logger   logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(parent context.Context, client sqsAPI, detector *Detector, queueURL string, logger logging.Logger) *Consumer {
	ctx, cancel := context.WithCancel(parent)
	return &Consumer{
		client:   client,
		detector: detector,
		queueURL: queueURL,
		logger:   logger.With("module", "sqs_consumer"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *Consumer) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.pollLoop()
	}()
}

func (c *Consumer) pollLoop() {
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		out, err := c.client.ReceiveMessage(c.ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20, // long poll
			VisibilityTimeout:   30,
		})
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			delay, _ := backoff.Next()
			c.logger.Error(c.ctx, "receive failed", "error", err.Error(), "retry_in", delay.String())
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}

		// A successful receive resets the backoff.
		backoff = retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))

		for _, msg := range out.Messages {
			c.handleMessage(c.ctx, msg)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg types.Message) {

	if msg.Body == nil {
		c.deleteMessage(ctx, msg)
		return
	}

	var evt ObjectCreatedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &evt); err != nil {
		// Poison message; redelivery would never help.
		c.logger.Warn(ctx, "dropping malformed notification", "error", err.Error())
		c.deleteMessage(ctx, msg)
		return
	}

	if err := c.detector.HandleObjectCreated(ctx, evt.Detail.Bucket.Name, evt.Detail.Object.Key); err != nil {
		// Transient failure: leave the message for redelivery.
		c.logger.Error(ctx, "notification handling failed, leaving for redelivery",
			"key", evt.Detail.Object.Key, "error", err.Error())
		return
	}

	c.deleteMessage(ctx, msg)
}

func (c *Consumer) deleteMessage(ctx context.Context, msg types.Message) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		c.logger.Error(ctx, "delete message failed", "error", err.Error())
	}
}

// Shutdown stops polling and waits for in-flight handling to finish, or
// for ctx to expire.
func (c *Consumer) Shutdown(ctx context.Context) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
