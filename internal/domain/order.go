package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

// Order is the slice of the order record the payment pipeline reads and writes.
type Order struct {
	ID              uuid.UUID
	CustomerEmail   string
	Total           Money
	PaymentState    PaymentState
	PaymentIntentID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateRegistration checks an order handed over by the order collaborator
// before it starts waiting for payment outcomes.
func (o Order) ValidateRegistration() error {
	var errs []error

	if o.ID == uuid.Nil {
		errs = append(errs, errors.New("order_id is empty"))
	}

	if o.Total.Currency == (currency.Unit{}) {
		errs = append(errs, errors.New("currency is empty"))
	}

	if minor, err := ChargeableMinorUnits(o.Total.Amount); err != nil {
		errs = append(errs, err)
	} else if minor == 0 {
		errs = append(errs, errors.New("total must be positive"))
	}

	if o.CustomerEmail != "" && !strings.Contains(o.CustomerEmail, "@") {
		errs = append(errs, fmt.Errorf("customer_email[%s] is not valid", o.CustomerEmail))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}

	return nil
}

// PaymentStateChanged is emitted after a webhook durably moved an order to a new state.
type PaymentStateChanged struct {
	OrderID    uuid.UUID    `json:"order_id"`
	From       PaymentState `json:"from"`
	To         PaymentState `json:"to"`
	EventID    string       `json:"event_id"`
	IntentID   string       `json:"payment_intent_id"`
	OccurredAt time.Time    `json:"occurred_at"`
}
