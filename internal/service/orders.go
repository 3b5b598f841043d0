package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
	"golang.org/x/text/currency"
)

// OrderRegistry lets the order collaborator hand over orders that will be
// paid through intents, so webhooks have a payment state to move.
type OrderRegistry struct {
	orders   port.OrderRepository
	currency currency.Unit
	logger   *slog.Logger
}

func NewOrderRegistry(orders port.OrderRepository, storeCurrency currency.Unit, logger *slog.Logger) *OrderRegistry {
	return &OrderRegistry{
		orders:   orders,
		currency: storeCurrency,
		logger:   logger,
	}
}

// Register stores the order in the created state and returns it as stored.
func (r *OrderRegistry) Register(ctx context.Context, order domain.Order) (domain.Order, error) {
	if err := order.ValidateRegistration(); err != nil {
		return domain.Order{}, err
	}

	if order.Total.Currency != r.currency {
		return domain.Order{}, fmt.Errorf("%w: currency[%s] is not supported, expected %s", domain.ErrValidation, order.Total.Currency, r.currency)
	}

	order.PaymentState = domain.PaymentStateCreated
	order.PaymentIntentID = ""

	orderID, err := r.orders.InsertOrder(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.InsertOrder: %w", err)
	}

	stored, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	r.logger.InfoContext(ctx, "order registered", "order_id", orderID, "total", stored.Total.String())

	return stored, nil
}

func (r *OrderRegistry) Get(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}
	return order, nil
}
