//go:build integration

package containers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kgo"
)

type KafkaContainer struct {
	Brokers string
}

func startKafka() (*KafkaContainer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("onecore-test"),
	)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	brokers, err := ctr.Brokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("brokers: %w", err)
	}
	if len(brokers) == 0 {
		return nil, errors.New("no brokers advertised")
	}
	return &KafkaContainer{Brokers: brokers[0]}, nil
}

// NewConsumer reads topics from the earliest offset without committing.
func (k *KafkaContainer) NewConsumer(groupID string, topics ...string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(k.Brokers),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
}

// FirstRecord polls until match accepts a record or ctx ends. It returns nil
// when nothing matched.
func FirstRecord(ctx context.Context, client *kgo.Client, match func(*kgo.Record) bool) *kgo.Record {
	for ctx.Err() == nil {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			if r := iter.Next(); match(r) {
				return r
			}
		}
	}
	return nil
}
