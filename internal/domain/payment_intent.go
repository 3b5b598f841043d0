package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

// metadata keys attached to the processor intent and read back from webhooks
const (
	MetadataOrderID       = "order_id"
	MetadataCustomerEmail = "customer_email"
	MetadataDisplayTotal  = "display_total"
	MetadataCreatedAt     = "created_at"
)

type RequestedLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderContext links a processor intent back to an order. It travels as
// opaque metadata and is the only source of order linkage on webhooks.
type OrderContext struct {
	OrderID       uuid.UUID
	CustomerEmail string
	DisplayTotal  string
	CreatedAt     time.Time
}

func (o OrderContext) Metadata() map[string]string {
	m := map[string]string{
		MetadataOrderID:      o.OrderID.String(),
		MetadataDisplayTotal: o.DisplayTotal,
		MetadataCreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.CustomerEmail != "" {
		m[MetadataCustomerEmail] = o.CustomerEmail
	}
	return m
}

type IntentRequest struct {
	AmountMinorUnits int64
	Currency         currency.Unit
	Items            []RequestedLine
	Order            OrderContext
	IdempotencyKey   string
}

func (r IntentRequest) Validate() error {
	var errs []error

	if r.AmountMinorUnits <= 0 {
		errs = append(errs, fmt.Errorf("amount must be a positive integer, got %d", r.AmountMinorUnits))
	}

	if r.Currency == (currency.Unit{}) {
		errs = append(errs, errors.New("currency is empty"))
	}

	if r.Order.OrderID == uuid.Nil {
		errs = append(errs, errors.New("order_id is empty"))
	}

	if r.Order.CustomerEmail != "" && !strings.Contains(r.Order.CustomerEmail, "@") {
		errs = append(errs, fmt.Errorf("customer_email[%s] is not valid", r.Order.CustomerEmail))
	}

	if len(r.Items) == 0 {
		errs = append(errs, errors.New("no items in request"))
	}

	perProduct := make(map[uuid.UUID]int, len(r.Items))
	for i, item := range r.Items {
		if item.ProductID == uuid.Nil {
			errs = append(errs, fmt.Errorf("items[%d]: product_id is empty", i))
		}
		if item.Quantity < 1 {
			errs = append(errs, fmt.Errorf("items[%d]: quantity must be at least 1", i))
			continue
		}
		if item.Quantity > MaxLineQuantity-perProduct[item.ProductID] {
			errs = append(errs, fmt.Errorf("items[%d]: quantity of product[%s] must not exceed %d", i, item.ProductID, MaxLineQuantity))
			continue
		}
		perProduct[item.ProductID] += item.Quantity
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}

	return nil
}

// IntentHandle is what the browser needs to confirm the payment.
type IntentHandle struct {
	ID           string
	ClientSecret string
	Status       string
	Simulated    bool
}
