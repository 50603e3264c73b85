package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"onecore/internal/audit"
	"onecore/internal/platform/config"
	"onecore/internal/platform/database"
	"onecore/internal/platform/health"
	"onecore/internal/platform/kafka/producer"
	"onecore/internal/platform/metrics"
	"onecore/internal/platform/redis"
	"onecore/internal/platform/tracer"
	"onecore/internal/platform/upstream"
	"onecore/internal/properties/cache"
	"onecore/migrations"
	"onecore/pkg/platform/circuit"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
	poolStatsInterval     = 15 * time.Second
)

// infra holds the optional backing services. Each falls back to an
// in-process implementation when it is not configured.
type infra struct {
	redis      *redis.Client
	db         *database.Pool
	kafka      *producer.Producer
	cacheStore cache.Store
	auditStore audit.Store
	auditSink  audit.Sink
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger, h *health.Handler) (*infra, error) {
	in := &infra{auditSink: audit.NoopSink{}}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		in.redis = rdb
		in.cacheStore = cache.NewRedisStore(rdb.Client)
		h.RegisterCheck("redis", rdb.Health)
		go recordPoolStats(ctx, rdb)
		log.Info("property cache backed by redis")
	} else {
		in.cacheStore = cache.NewMemoryStore()
		log.Info("property cache in memory", "reason", "REDIS_URL not set")
	}

	pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		in.Close(log)
		return nil, err
	}
	if pool != nil {
		in.db = pool
		if err := database.Migrate(pool.DB(), migrations.FS); err != nil {
			in.Close(log)
			return nil, err
		}
		in.auditStore = audit.NewPostgresStore(pool.DB())
		h.RegisterCheck("postgres", pool.Health)
		log.Info("audit events stored in postgres")
	} else {
		in.auditStore = audit.NewInMemoryStore()
		log.Info("audit events kept in memory", "reason", "DATABASE_URL not set")
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			in.Close(log)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		in.kafka = p
		if err := p.EnsureTopic(ctx, cfg.Kafka.AuditTopic, auditTopicPartitions, auditTopicReplication); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		in.auditSink = audit.NewKafkaSink(p, cfg.Kafka.AuditTopic)
		h.RegisterCheck("kafka", p.Ping)
		log.Info("audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
	}

	return in, nil
}

func (in *infra) Close(log *slog.Logger) {
	if in.kafka != nil {
		if err := in.kafka.Close(); err != nil {
			log.Warn("kafka close failed", "error", err)
		}
	}
	if err := in.db.Close(); err != nil {
		log.Warn("database close failed", "error", err)
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
}

func recordPoolStats(ctx context.Context, c *redis.Client) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}

// newUpstreamClients builds one client per configured service, each with its
// own breaker, and registers its /health as a readiness check.
func newUpstreamClients(cfg config.Server, log *slog.Logger, m *metrics.Metrics, tr tracer.Tracer, h *health.Handler) map[string]*upstream.Client {
	clients := make(map[string]*upstream.Client, len(config.Services))
	for _, name := range config.Services {
		u := cfg.Upstreams[name]
		c := upstream.NewClient(upstream.Config{
			Service: name,
			BaseURL: u.URL,
			APIKey:  u.APIKey,
			Timeout: u.Timeout,
			Breaker: circuit.New(name),
			Tracer:  tr,
			Metrics: m,
			Logger:  log,
		})
		clients[name] = c
		h.RegisterCheck("upstream:"+name, c.Health)
	}
	return clients
}
