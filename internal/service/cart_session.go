package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
)

// CartService loads a cart, applies one action and saves the whole aggregate back.
// Actions on the same cart are serialized within the process.
type CartService struct {
	store   port.CartSnapshotStore
	catalog port.Catalog
	logger  *slog.Logger

	locks sync.Map // cartID -> *sync.Mutex
}

func NewCartService(store port.CartSnapshotStore, catalog port.Catalog, logger *slog.Logger) *CartService {
	return &CartService{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

func (s *CartService) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	if err := domain.ValidateCartID(cartID); err != nil {
		return domain.Cart{}, err
	}

	return s.load(ctx, cartID), nil
}

// AddProduct captures the current catalog price on the new line.
func (s *CartService) AddProduct(ctx context.Context, cartID string, productID uuid.UUID, quantity int) (domain.Cart, error) {
	if err := domain.ValidateCartID(cartID); err != nil {
		return domain.Cart{}, err
	}

	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.Cart{}, err
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("catalog.GetProduct: %w", err)
	}

	return s.apply(ctx, cartID, domain.AddItem{Product: product, Quantity: quantity})
}

func (s *CartService) RemoveProduct(ctx context.Context, cartID string, productID uuid.UUID) (domain.Cart, error) {
	return s.apply(ctx, cartID, domain.RemoveItem{ProductID: productID})
}

func (s *CartService) UpdateQuantity(ctx context.Context, cartID string, productID uuid.UUID, quantity int) (domain.Cart, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return domain.Cart{}, err
	}

	return s.apply(ctx, cartID, domain.UpdateQuantity{ProductID: productID, Quantity: quantity})
}

func (s *CartService) Clear(ctx context.Context, cartID string) (domain.Cart, error) {
	return s.apply(ctx, cartID, domain.ClearCart{})
}

func (s *CartService) ToggleOpen(ctx context.Context, cartID string) (domain.Cart, error) {
	return s.apply(ctx, cartID, domain.ToggleOpen{})
}

func (s *CartService) apply(ctx context.Context, cartID string, action domain.CartAction) (domain.Cart, error) {
	if err := domain.ValidateCartID(cartID); err != nil {
		return domain.Cart{}, err
	}

	unlock := s.lock(cartID)
	defer unlock()

	next := domain.Reduce(s.load(ctx, cartID), action)

	if err := s.store.SaveSnapshot(ctx, cartID, next); err != nil {
		return domain.Cart{}, fmt.Errorf("store.SaveSnapshot: %w", err)
	}

	return next, nil
}

// load never fails: a missing or unreadable snapshot yields an empty cart.
func (s *CartService) load(ctx context.Context, cartID string) domain.Cart {
	snapshot, err := s.store.LoadSnapshot(ctx, cartID)
	if err != nil {
		s.logger.WarnContext(ctx, "cart snapshot unreadable, starting with an empty cart", "cart_id", cartID, "error", err)
		return domain.NewCart()
	}

	if snapshot == nil {
		return domain.NewCart()
	}

	return *snapshot
}

func (s *CartService) lock(cartID string) func() {
	v, _ := s.locks.LoadOrStore(cartID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
