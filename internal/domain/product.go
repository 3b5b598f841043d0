package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is owned by the catalog. The cart only reads its price when a line is added.
type Product struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (p Product) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("product id is empty")
	}

	if p.Price.IsNegative() {
		return fmt.Errorf("product[%s] price is negative", p.ID)
	}

	return nil
}
