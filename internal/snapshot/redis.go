package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each cart as one JSON value, so a SET replaces it atomically.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) port.CartSnapshotStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) LoadSnapshot(ctx context.Context, cartID string) (*domain.Cart, error) {
	if err := domain.ValidateCartID(cartID); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, cacheKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	return decode(data)
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, cartID string, cart domain.Cart) error {
	if err := domain.ValidateCartID(cartID); err != nil {
		return err
	}

	data, err := encode(cart)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, cacheKey(cartID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func cacheKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}
