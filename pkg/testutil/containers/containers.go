//go:build integration

// Package containers runs the gateway's optional backing services in Docker
// for integration tests. A container is started at most once per test binary
// and reused by every suite; the testcontainers reaper removes it when the
// binary exits.
package containers

import (
	"sync"
	"testing"
)

var (
	pgOnce         sync.Once
	sharedPostgres *PostgresContainer
	pgErr          error

	kafkaOnce   sync.Once
	sharedKafka *KafkaContainer
	kafkaErr    error
)

// Postgres returns the shared, migrated Postgres instance.
func Postgres(t *testing.T) *PostgresContainer {
	t.Helper()
	pgOnce.Do(func() { sharedPostgres, pgErr = startPostgres() })
	if pgErr != nil {
		t.Fatalf("postgres container: %v", pgErr)
	}
	return sharedPostgres
}

// Kafka returns the shared broker.
func Kafka(t *testing.T) *KafkaContainer {
	t.Helper()
	kafkaOnce.Do(func() { sharedKafka, kafkaErr = startKafka() })
	if kafkaErr != nil {
		t.Fatalf("kafka container: %v", kafkaErr)
	}
	return sharedKafka
}
