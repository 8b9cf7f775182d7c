package main

import (
	"context"
	"fmt"

	"github.com/egannguyen/earphones-support/internal/cache"
	"github.com/egannguyen/earphones-support/internal/config"
	"github.com/egannguyen/earphones-support/internal/messaging"
	"github.com/egannguyen/earphones-support/internal/messaging/kafka"
	"github.com/egannguyen/earphones-support/internal/metrics"
	"github.com/egannguyen/earphones-support/internal/observability"
	"github.com/egannguyen/earphones-support/internal/repository/sqlstore"
	"github.com/egannguyen/earphones-support/internal/service"
)

// app holds the wired dependencies shared by every command.
type app struct {
	db        *sqlstore.DB
	cache     cache.Client
	broker    *kafka.Broker // nil without brokers
	publisher messaging.Publisher
	metrics   *metrics.Registry
	svc       *service.SupportService
}

func newApp(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*app, error) {
	db, err := sqlstore.InitDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Seed {
		seeded, err := db.Seed(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
		if seeded {
			logger.Info().Msg("sample data inserted")
		}
	}

	a := &app{db: db, metrics: metrics.NewRegistry()}
	a.cache = newCache(ctx, cfg.Cache, logger)

	if len(cfg.Kafka.Brokers) > 0 {
		a.broker = kafka.NewKafkaBroker(cfg.Kafka.Brokers, logger)
		a.publisher = a.broker
	} else {
		a.publisher = &messaging.LogPublisher{Logger: logger}
	}

	a.svc = service.NewSupportService(
		sqlstore.NewProductRepository(db),
		sqlstore.NewOrderRepository(db),
		sqlstore.NewComplaintRepository(db),
		a.publisher,
		a.cache,
		a.metrics,
		logger,
		service.Options{
			CacheTTL:        cfg.Cache.TTL,
			ComplaintTopic:  cfg.Kafka.ComplaintTopic,
			EscalationTopic: cfg.Kafka.EscalationTopic,
		},
	)
	return a, nil
}

// newCache falls back to memory when Redis is unreachable.
func newCache(ctx context.Context, cfg config.CacheConfig, logger *observability.Logger) cache.Client {
	switch cfg.Driver {
	case "none":
		return cache.Nop{}
	case "redis":
		c, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
			Prefix:   cfg.Redis.Prefix,
		})
		if err == nil {
			return c
		}
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, using memory cache")
	}
	return cache.NewMemoryClient(cfg.MaxEntries)
}

func (a *app) Close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close kafka writers")
		}
	}
	if err := a.cache.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close cache")
	}
	if err := a.db.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close database")
	}
}
