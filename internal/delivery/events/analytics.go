package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Pesokrava/storefront/internal/domain"
)

// AnalyticsStream writes product events to Kafka keyed by product id
type AnalyticsStream struct {
	writer *kafka.Writer
}

// NewAnalyticsStream creates a writer for the analytics topic
func NewAnalyticsStream(brokers []string, topic string) *AnalyticsStream {
	return &AnalyticsStream{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Publish streams the events; same-product events share a partition
func (s *AnalyticsStream) Publish(ctx context.Context, events ...*domain.ProductEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode product event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.ProductID.String()),
			Value: value,
			Time:  e.Timestamp,
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write analytics events: %w", err)
	}
	return nil
}

// Close flushes pending writes
func (s *AnalyticsStream) Close() error {
	return s.writer.Close()
}
