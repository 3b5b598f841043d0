// Package ledger records webhook event IDs that were already reconciled.
// It is an optimization only: the order state check decides correctness.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/port"
	"github.com/redis/go-redis/v9"
)

type redisLedger struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) port.EventLedger {
	return &redisLedger{client: client, ttl: ttl}
}

func (l *redisLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, eventKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

func (l *redisLedger) Remember(ctx context.Context, eventID string) error {
	if err := l.client.Set(ctx, eventKey(eventID), time.Now().UTC().Format(time.RFC3339), l.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func eventKey(eventID string) string {
	return fmt.Sprintf("webhook:event:%s", eventID)
}
