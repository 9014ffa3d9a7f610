// internal/consumer/consumer.go

// Package consumer runs the queue loop: long-poll SQS, decode one
// message at a time, dispatch, acknowledge.
package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"activity-notifier/internal/common/logger"
	"activity-notifier/internal/common/metrics"
	"activity-notifier/internal/common/observability"
	"activity-notifier/internal/event"
	"activity-notifier/internal/models"
)

// QueueAPI is the slice of the SQS client the consumer uses.
type QueueAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Dispatcher routes one decoded event to its handler.
type Dispatcher interface {
	Handle(ctx context.Context, ev models.Event) error
}

type Config struct {
	QueueURL          string
	WaitTimeSeconds   int32
	VisibilityTimeout int32
	HandlerTimeout    time.Duration
}

// Consumer drives the poll/dispatch/ack cycle. Every message is
// acknowledged on return whether or not a notification was written:
// decode and store errors are logged and swallowed here, since
// redelivering a permanently bad message only wastes cycles.
type Consumer struct {
	queue  QueueAPI
	cfg    Config
	engine Dispatcher
	logger logger.Logger
	obs    *observability.Observability
}

func New(queue QueueAPI, cfg Config, engine Dispatcher, log logger.Logger, obs *observability.Observability) *Consumer {
	return &Consumer{
		queue:  queue,
		cfg:    cfg,
		engine: engine,
		logger: log,
		obs:    obs,
	}
}

// Run polls until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", map[string]interface{}{
		"queueUrl": c.cfg.QueueURL,
	})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", nil)
			return nil
		default:
		}

		out, err := c.queue.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.cfg.QueueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     c.cfg.WaitTimeSeconds,
			VisibilityTimeout:   c.cfg.VisibilityTimeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("receive failed", map[string]interface{}{
				"error": err.Error(),
			})
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range out.Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg types.Message) {
	start := time.Now()
	outcome := c.handleBody(ctx, []byte(aws.ToString(msg.Body)))

	c.obs.RecordEventProcessed(ctx, outcome)
	c.obs.RecordEventDuration(ctx, time.Since(start), outcome)

	c.ack(msg)
}

func (c *Consumer) handleBody(ctx context.Context, body []byte) string {
	ev, err := event.Decode(body)
	switch {
	case errors.Is(err, event.ErrUnknownType):
		metrics.EventsUnknownType.Inc()
		c.logger.Debug("event type not routed", map[string]interface{}{
			"body": string(body),
		})
		return "unknown_type"
	case err != nil:
		metrics.EventDecodeFailures.Inc()
		c.logger.Warn("event decode failed", map[string]interface{}{
			"body":  string(body),
			"error": err.Error(),
		})
		return "decode_error"
	}

	kind := string(ev.EventType())
	metrics.EventsReceived.WithLabelValues(kind).Inc()

	hctx, cancel := context.WithTimeout(ctx, c.cfg.HandlerTimeout)
	defer cancel()

	handleStart := time.Now()
	if err := c.engine.Handle(hctx, ev); err != nil {
		metrics.HandlerFailures.WithLabelValues(kind).Inc()
		c.logger.Error("event handling failed", map[string]interface{}{
			"eventType": kind,
			"body":      string(body),
			"error":     err.Error(),
		})
		return "handler_error"
	}

	metrics.HandlerDuration.WithLabelValues(kind).Observe(time.Since(handleStart).Seconds())
	return "ok"
}

// ack deletes the message. A fresh context is used so shutdown does not
// leave a fully processed message to be redelivered.
func (c *Consumer) ack(msg types.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.queue.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.cfg.QueueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		c.logger.Error("message delete failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
