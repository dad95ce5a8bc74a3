package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// Delivery is one fetched message
type Delivery struct {
	Data []byte
	// Attempt is the 1-based delivery count
	Attempt int
	// Final is true when JetStream will not redeliver after a failure
	Final bool
}

// HandlerFunc processes a delivery; a non-nil error naks the message
type HandlerFunc func(ctx context.Context, d Delivery) error

// PullConsumer fetches batches from a durable consumer and acks or naks each message
type PullConsumer struct {
	sub    *nats.Subscription
	cfg    config.NotificationConfig
	logger *logger.Logger
}

// NewPullConsumer binds to the durable consumer
func NewPullConsumer(js nats.JetStreamContext, cfg config.NotificationConfig, log *logger.Logger) (*PullConsumer, error) {
	sub, err := js.PullSubscribe(cfg.Subject, cfg.Consumer, nats.ManualAck(), nats.Bind(cfg.Stream, cfg.Consumer))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to JetStream consumer: %w", err)
	}

	log.WithFields(map[string]any{
		"stream":   cfg.Stream,
		"consumer": cfg.Consumer,
	}).Info("Subscribed to JetStream consumer")

	return &PullConsumer{sub: sub, cfg: cfg, logger: log}, nil
}

// Run fetches until ctx is cancelled
func (c *PullConsumer) Run(ctx context.Context, handle HandlerFunc) {
	for {
		if ctx.Err() != nil {
			return
		}

		msgs, err := c.sub.Fetch(c.cfg.FetchBatch, nats.MaxWait(c.cfg.FetchMaxWait))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			c.logger.Error("Failed to fetch messages from JetStream", err)
			select {
			case <-time.After(c.cfg.FetchMaxWait):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, msg := range msgs {
			c.dispatch(ctx, msg, handle)
		}
	}
}

func (c *PullConsumer) dispatch(ctx context.Context, msg *nats.Msg, handle HandlerFunc) {
	d := Delivery{Data: msg.Data, Attempt: 1}
	if meta, err := msg.Metadata(); err == nil {
		d.Attempt = int(meta.NumDelivered)
	}
	d.Final = c.cfg.MaxDeliver > 0 && d.Attempt >= c.cfg.MaxDeliver

	if err := handle(ctx, d); err != nil {
		c.logger.WithFields(map[string]any{
			"attempt": d.Attempt,
			"final":   d.Final,
		}).Error("Failed to handle message", err)

		if nakErr := msg.NakWithDelay(redeliveryDelay(d.Attempt)); nakErr != nil {
			c.logger.Error("Failed to NAK message", nakErr)
		}
		return
	}

	if ackErr := msg.Ack(); ackErr != nil {
		c.logger.Error("Failed to ACK message", ackErr)
	}
}

// redeliveryDelay follows the consumer BackOff schedule for explicit naks
func redeliveryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 10 {
		attempt = 10
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}

// Close drains the subscription
func (c *PullConsumer) Close() {
	if err := c.sub.Unsubscribe(); err != nil {
		c.logger.Warnf("Failed to unsubscribe from JetStream: %v", err)
	}
}
