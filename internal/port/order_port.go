package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
)

// OrderRepository is the order collaborator as seen by the payment pipeline.
// All operations are atomic per order ID.
type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	GetPaymentState(ctx context.Context, orderID uuid.UUID) (domain.PaymentState, error)
	SetPaymentState(ctx context.Context, orderID uuid.UUID, state domain.PaymentState) error

	// CompareAndSwapPaymentState writes next only if the stored state still equals expected.
	// It reports whether the write happened.
	CompareAndSwapPaymentState(ctx context.Context, orderID uuid.UUID, expected, next domain.PaymentState, intentID string) (bool, error)
}
