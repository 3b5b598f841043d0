// Package snapshot persists whole cart aggregates. Every save replaces the
// previous snapshot in one atomic step; a partially written cart is never visible.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikolayk812/checkoutpay/internal/domain"
)

var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

// document is the persisted shape. Totals are stored for readers of the raw
// data but are recomputed on load.
type document struct {
	Lines  []domain.CartLine `json:"lines"`
	Totals domain.Totals     `json:"totals"`
	IsOpen bool              `json:"is_open"`
}

func encode(cart domain.Cart) ([]byte, error) {
	data, err := json.Marshal(document{
		Lines:  cart.Lines,
		Totals: cart.Totals,
		IsOpen: cart.IsOpen,
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*domain.Cart, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	cart := domain.RestoreCart(doc.Lines, doc.IsOpen)
	return &cart, nil
}
