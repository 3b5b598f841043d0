package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderFilter has AND semantics across fields, OR semantics within each field slice
type OrderFilter struct {
	IDs       []uuid.UUID
	States    []PaymentState
	CreatedAt *TimeRange
	UpdatedAt *TimeRange
}

func (f OrderFilter) Validate() error {
	if len(f.IDs) == 0 && len(f.States) == 0 && f.CreatedAt == nil && f.UpdatedAt == nil {
		return errors.New("all fields are empty")
	}

	for _, state := range f.States {
		if _, err := ToPaymentState(string(state)); err != nil {
			return fmt.Errorf("state[%s]: %w", state, err)
		}
	}

	if f.CreatedAt != nil {
		if err := f.CreatedAt.Validate(); err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
	}

	if f.UpdatedAt != nil {
		if err := f.UpdatedAt.Validate(); err != nil {
			return fmt.Errorf("updatedAt: %w", err)
		}
	}

	return nil
}

// AbandonedFilter selects orders still waiting for a payment outcome that
// have not changed since the cutoff.
func AbandonedFilter(cutoff time.Time) OrderFilter {
	return OrderFilter{
		States:    []PaymentState{PaymentStateCreated, PaymentStateRequiresAction},
		UpdatedAt: &TimeRange{Before: &cutoff},
	}
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}

func (t TimeRange) Contains(ts time.Time) bool {
	if t.Before != nil && !ts.Before(*t.Before) {
		return false
	}
	if t.After != nil && !ts.After(*t.After) {
		return false
	}
	return true
}
