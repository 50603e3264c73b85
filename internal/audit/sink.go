package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"onecore/internal/platform/kafka/producer"
)

// Sink forwards events to an external consumer after they are stored.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Name() string
}

type NoopSink struct{}

func (NoopSink) Publish(context.Context, Event) error { return nil }
func (NoopSink) Name() string                         { return "noop" }

// MessageProducer is satisfied by *producer.Producer.
type MessageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSink publishes events as JSON keyed by resource id so events for one
// resource stay ordered within a partition.
type KafkaSink struct {
	producer MessageProducer
	topic    string
}

func NewKafkaSink(p MessageProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	return s.producer.Produce(ctx, &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.Resource + ":" + event.ResourceID),
		Value: value,
		Headers: map[string]string{
			"action":     string(event.Action),
			"request_id": event.RequestID,
		},
	})
}
