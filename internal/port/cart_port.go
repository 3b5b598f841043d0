package port

import (
	"context"

	"github.com/nikolayk812/checkoutpay/internal/domain"
)

// CartSnapshotStore persists whole cart aggregates. SaveSnapshot must replace
// the previous snapshot atomically. LoadSnapshot returns nil when nothing was saved.
type CartSnapshotStore interface {
	LoadSnapshot(ctx context.Context, cartID string) (*domain.Cart, error)
	SaveSnapshot(ctx context.Context, cartID string, cart domain.Cart) error
}
