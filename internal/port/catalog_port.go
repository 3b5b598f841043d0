package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
)

type Catalog interface {
	// GetProduct returns domain.ErrProductNotFound when the product does not exist.
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
}
