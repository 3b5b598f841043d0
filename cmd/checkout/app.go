package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkoutpay/internal/config"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/ledger"
	"github.com/nikolayk812/checkoutpay/internal/port"
	"github.com/nikolayk812/checkoutpay/internal/publisher"
	"github.com/nikolayk812/checkoutpay/internal/repository"
	"github.com/nikolayk812/checkoutpay/internal/snapshot"
	"github.com/redis/go-redis/v9"
)

// app holds the collaborators picked from config. Every backend has an
// in-process fallback so the service runs without any infrastructure.
type app struct {
	orders    port.OrderRepository
	catalog   port.Catalog
	snapshots port.CartSnapshotStore
	ledger    port.EventLedger
	publisher port.PaymentStatePublisher

	pool    *pgxpool.Pool
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close())
		}
	}()

	if cfg.Database.URL != "" {
		a.pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		a.closers = append(a.closers, func() error { a.pool.Close(); return nil })

		if err := a.pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("pool.Ping: %w", err)
		}

		a.orders = repository.NewOrder(a.pool)
		a.catalog = repository.NewCatalog(a.pool)
		logger.Info("using postgres for orders and catalog")
	} else {
		a.orders = repository.NewMemoryOrder()

		var products []domain.Product
		if cfg.Catalog.File != "" {
			products, err = repository.LoadCatalogFile(cfg.Catalog.File)
			if err != nil {
				return nil, fmt.Errorf("repository.LoadCatalogFile: %w", err)
			}
		}
		a.catalog = repository.NewMemoryCatalog(products...)
		logger.Warn("database.url is empty, orders are kept in memory", "catalog_products", len(products))
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		a.closers = append(a.closers, client.Close)

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}

		a.snapshots = snapshot.NewRedisStore(client, cfg.Redis.SnapshotTTL)
		a.ledger = ledger.NewRedis(client, cfg.Redis.LedgerTTL)
		logger.Info("using redis for cart snapshots and webhook ledger", "addr", cfg.Redis.Addr)
	} else {
		a.snapshots, err = snapshot.NewFileStore(cfg.Cart.StateDir)
		if err != nil {
			return nil, fmt.Errorf("snapshot.NewFileStore: %w", err)
		}
		a.ledger = ledger.NewMemory(cfg.Redis.LedgerTTL)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := publisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, kafkaPublisher.Close)
		a.publisher = kafkaPublisher
		logger.Info("publishing payment state changes to kafka", "topic", cfg.Kafka.Topic)
	} else {
		a.publisher = publisher.NewLog(logger)
	}

	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
