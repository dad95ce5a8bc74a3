package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// streamMaxAge bounds how long an unprocessed notification task stays queued
const streamMaxAge = 72 * time.Hour

// StreamConfig provisions the notification task stream and its durable consumer
type StreamConfig struct {
	js     nats.JetStreamContext
	cfg    config.NotificationConfig
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js nats.JetStreamContext, cfg config.NotificationConfig, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		cfg:    cfg,
		logger: log,
	}
}

// generateExponentialBackoff returns 1s, 2s, 4s, ...
// MaxDeliver N needs N-1 durations since the first delivery is immediate.
func generateExponentialBackoff(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

// EnsureStream creates the work-queue stream if it does not exist
func (s *StreamConfig) EnsureStream() error {
	stream, err := s.js.StreamInfo(s.cfg.Stream)

	if errors.Is(err, nats.ErrStreamNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":  s.cfg.Stream,
			"subject": s.cfg.Subject,
		}).Info("Creating JetStream stream")

		_, err = s.js.AddStream(&nats.StreamConfig{
			Name:        s.cfg.Stream,
			Subjects:    []string{s.cfg.Subject},
			Retention:   nats.WorkQueuePolicy,
			Storage:     nats.FileStorage,
			Replicas:    1,
			MaxAge:      streamMaxAge,
			Discard:     nats.DiscardOld,
			Description: "Customer notification tasks",
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}

		s.logger.Info("JetStream stream created")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"stream":   stream.Config.Name,
		"messages": stream.State.Msgs,
	}).Info("JetStream stream already exists")

	return nil
}

// EnsureConsumer creates the durable pull consumer if it does not exist.
// Tasks that exhaust MaxDeliver stay failed in notification_tasks.
func (s *StreamConfig) EnsureConsumer() error {
	consumerInfo, err := s.js.ConsumerInfo(s.cfg.Stream, s.cfg.Consumer)

	if errors.Is(err, nats.ErrConsumerNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   s.cfg.Stream,
			"consumer": s.cfg.Consumer,
		}).Info("Creating JetStream consumer")

		_, err = s.js.AddConsumer(s.cfg.Stream, &nats.ConsumerConfig{
			Durable:       s.cfg.Consumer,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       s.cfg.AckWait,
			MaxDeliver:    s.cfg.MaxDeliver,
			FilterSubject: s.cfg.Subject,
			BackOff:       generateExponentialBackoff(s.cfg.MaxDeliver),
			Description:   "Notification task executor",
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}

		s.logger.Info("JetStream consumer created")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"consumer":    consumerInfo.Name,
		"pending":     consumerInfo.NumPending,
		"redelivered": consumerInfo.NumRedelivered,
		"ack_pending": consumerInfo.NumAckPending,
	}).Info("JetStream consumer already exists")

	return nil
}
