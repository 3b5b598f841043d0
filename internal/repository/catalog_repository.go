package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/shopspring/decimal"
)

type CatalogRepository struct {
	db DBTX
}

func NewCatalog(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: pool}
}

func (r *CatalogRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var (
		p     domain.Product
		price string
	)

	err := r.db.QueryRow(ctx, `SELECT id, name, price::text FROM products WHERE id = $1`, productID).
		Scan(&p.ID, &p.Name, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("q.GetProduct: %w", domain.ErrProductNotFound)
		}
		return p, fmt.Errorf("q.GetProduct: %w", err)
	}

	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return p, fmt.Errorf("price[%s] is not valid: %w", price, err)
	}

	return p, nil
}

// UpsertProducts writes all products in one transaction.
func (r *CatalogRepository) UpsertProducts(ctx context.Context, products []domain.Product) error {
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("p.Validate: %w", err)
		}
	}

	_, err := withTx(ctx, r.db, func(tx DBTX) (struct{}, error) {
		for _, p := range products {
			_, err := tx.Exec(ctx,
				`INSERT INTO products (id, name, price) VALUES ($1, $2, $3::numeric)
				 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, updated_at = NOW()`,
				p.ID, p.Name, p.Price.String())
			if err != nil {
				return struct{}{}, fmt.Errorf("q.UpsertProduct[%s]: %w", p.ID, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}
