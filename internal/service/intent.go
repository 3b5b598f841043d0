package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
	"golang.org/x/text/currency"
)

// Initiator asks the processor to authorize the amount of a cart. It never
// trusts the client amount: the cart is re-priced from the catalog first.
type Initiator struct {
	catalog   port.Catalog
	processor port.PaymentProcessor
	currency  currency.Unit
	logger    *slog.Logger
	now       func() time.Time
}

func NewInitiator(catalog port.Catalog, processor port.PaymentProcessor, storeCurrency currency.Unit, logger *slog.Logger) *Initiator {
	return &Initiator{
		catalog:   catalog,
		processor: processor,
		currency:  storeCurrency,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (i *Initiator) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.IntentHandle, error) {
	if err := req.Validate(); err != nil {
		return domain.IntentHandle{}, err
	}

	if req.Currency != i.currency {
		return domain.IntentHandle{}, fmt.Errorf("%w: currency[%s] is not supported, expected %s", domain.ErrValidation, req.Currency, i.currency)
	}

	totals, err := i.price(ctx, req.Items)
	if err != nil {
		return domain.IntentHandle{}, err
	}

	serverAmount, err := domain.ChargeableMinorUnits(totals.Total)
	if err != nil {
		return domain.IntentHandle{}, fmt.Errorf("%w: cart total: %w", domain.ErrValidation, err)
	}

	if serverAmount != req.AmountMinorUnits {
		i.logger.WarnContext(ctx, "client amount does not match cart",
			"order_id", req.Order.OrderID,
			"client_amount", req.AmountMinorUnits,
			"server_amount", serverAmount)
		return domain.IntentHandle{}, fmt.Errorf("%w: amount does not match cart: got %d, want %d", domain.ErrValidation, req.AmountMinorUnits, serverAmount)
	}

	req.Order.DisplayTotal = domain.Money{Amount: totals.Total, Currency: req.Currency}.String()
	if req.Order.CreatedAt.IsZero() {
		req.Order.CreatedAt = i.now()
	}

	handle, err := i.processor.CreatePaymentIntent(ctx, req)
	if err != nil {
		i.logger.ErrorContext(ctx, "payment intent creation failed", "order_id", req.Order.OrderID, "error", err)
		if !errors.Is(err, domain.ErrUpstream) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
		return domain.IntentHandle{}, err
	}

	i.logger.InfoContext(ctx, "payment intent created",
		"order_id", req.Order.OrderID,
		"payment_intent_id", handle.ID,
		"amount", req.AmountMinorUnits,
		"simulated", handle.Simulated)

	return handle, nil
}

// price rebuilds the cart from catalog prices with the same reducer the cart uses.
func (i *Initiator) price(ctx context.Context, items []domain.RequestedLine) (domain.Totals, error) {
	cart := domain.NewCart()

	for idx, item := range items {
		product, err := i.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return domain.Totals{}, fmt.Errorf("%w: items[%d]: %w", domain.ErrValidation, idx, err)
			}
			return domain.Totals{}, fmt.Errorf("catalog.GetProduct: %w", err)
		}

		cart = domain.Reduce(cart, domain.AddItem{Product: product, Quantity: item.Quantity})
	}

	return cart.Totals, nil
}
