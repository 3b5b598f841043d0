package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
)

// memoryOrderRepository backs local runs without a database. One mutex
// guards all orders, which gives the per-order atomicity the port requires.
type memoryOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order
	now    func() time.Time
}

func NewMemoryOrder() port.OrderRepository {
	return &memoryOrderRepository{
		orders: make(map[uuid.UUID]domain.Order),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *memoryOrderRepository) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("GetOrder: %w", ErrNotFound)
	}
	return o, nil
}

func (r *memoryOrderRepository) InsertOrder(_ context.Context, order domain.Order) (uuid.UUID, error) {
	if order.Total.Amount.IsNegative() {
		return uuid.Nil, errors.New("order total is negative")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if _, exists := r.orders[order.ID]; exists {
		return uuid.Nil, fmt.Errorf("InsertOrder[%s]: %w", order.ID, domain.ErrOrderExists)
	}
	if order.PaymentState == "" {
		order.PaymentState = domain.PaymentStateCreated
	}

	now := r.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = order

	return order.ID, nil
}

func (r *memoryOrderRepository) GetPaymentState(_ context.Context, orderID uuid.UUID) (domain.PaymentState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return "", fmt.Errorf("GetPaymentState: %w", ErrNotFound)
	}
	return o.PaymentState, nil
}

func (r *memoryOrderRepository) SetPaymentState(_ context.Context, orderID uuid.UUID, state domain.PaymentState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("SetPaymentState: %w", ErrNotFound)
	}

	o.PaymentState = state
	o.UpdatedAt = r.now()
	r.orders[orderID] = o

	return nil
}

func (r *memoryOrderRepository) CompareAndSwapPaymentState(_ context.Context, orderID uuid.UUID, expected, next domain.PaymentState, intentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return false, fmt.Errorf("CompareAndSwapPaymentState: %w", ErrNotFound)
	}

	if o.PaymentState != expected {
		return false, nil
	}

	o.PaymentState = next
	if intentID != "" {
		o.PaymentIntentID = intentID
	}
	o.UpdatedAt = r.now()
	r.orders[orderID] = o

	return true, nil
}

func (r *memoryOrderRepository) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Order
	for _, o := range r.orders {
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, o.ID) {
			continue
		}
		if len(filter.States) > 0 && !slices.Contains(filter.States, o.PaymentState) {
			continue
		}
		if filter.CreatedAt != nil && !filter.CreatedAt.Contains(o.CreatedAt) {
			continue
		}
		if filter.UpdatedAt != nil && !filter.UpdatedAt.Contains(o.UpdatedAt) {
			continue
		}
		result = append(result, o)
	}

	slices.SortFunc(result, func(a, b domain.Order) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})

	return result, nil
}
