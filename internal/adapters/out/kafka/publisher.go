// Package kafka publishes agent events to a Kafka topic, keyed by agent id so
// each agent's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

const DefaultWriteTimeout = 2 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type EventPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return NewEventPublisherWithWriter(w, DefaultWriteTimeout)
}

func NewEventPublisherWithWriter(w messageWriter, timeout time.Duration) *EventPublisher {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &EventPublisher{writer: w, timeout: timeout}
}

func (p *EventPublisher) Publish(ctx context.Context, event ports.AgentEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AgentID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}

func (p *EventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
