package domain

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the cart aggregate. Totals are always derived from Lines and are
// never set independently; use NewCart, RestoreCart or Reduce to obtain one.
type Cart struct {
	Lines []CartLine `json:"lines"`
	Totals
	IsOpen bool `json:"is_open"`
}

func NewCart() Cart {
	return Cart{Totals: ComputeTotals(nil)}
}

// MaxLineQuantity bounds the quantity of one line. Totals of bounded lines
// always fit in int64 minor units.
const MaxLineQuantity = 10_000

// ValidateQuantity rejects quantities the reducer would otherwise cap.
func ValidateQuantity(quantity int) error {
	if quantity > MaxLineQuantity {
		return fmt.Errorf("%w: quantity[%d] must not exceed %d", ErrValidation, quantity, MaxLineQuantity)
	}
	return nil
}

// addQuantity sums two quantities, saturating at MaxLineQuantity.
// current must already be within [0, MaxLineQuantity].
func addQuantity(current, delta int) int {
	if delta > MaxLineQuantity-current {
		return MaxLineQuantity
	}
	return current + delta
}

// RestoreCart rebuilds an aggregate from persisted lines. Lines with a
// non-positive quantity or a negative price are dropped, quantities are
// capped, duplicates are merged and totals are recomputed, so a tampered or
// stale snapshot still satisfies the invariants.
func RestoreCart(lines []CartLine, isOpen bool) Cart {
	var restored []CartLine

	for _, line := range lines {
		if line.Quantity <= 0 || line.ProductID == uuid.Nil || line.UnitPrice.IsNegative() {
			continue
		}

		_, idx, found := lo.FindIndexOf(restored, func(l CartLine) bool {
			return l.ProductID == line.ProductID
		})
		if found {
			restored[idx].Quantity = addQuantity(restored[idx].Quantity, line.Quantity)
			continue
		}

		line.Quantity = min(line.Quantity, MaxLineQuantity)

		restored = append(restored, line)
	}

	c := Cart{IsOpen: isOpen}
	return c.withLines(restored)
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Line(productID uuid.UUID) (CartLine, bool) {
	return lo.Find(c.Lines, func(l CartLine) bool {
		return l.ProductID == productID
	})
}

// CartAction is the closed set of transitions accepted by Reduce.
type CartAction interface {
	cartAction()
}

type AddItem struct {
	Product  Product
	Quantity int
}

type RemoveItem struct {
	ProductID uuid.UUID
}

type UpdateQuantity struct {
	ProductID uuid.UUID
	Quantity  int
}

type ClearCart struct{}

type ToggleOpen struct{}

type OpenCart struct{}

type CloseCart struct{}

func (AddItem) cartAction()        {}
func (RemoveItem) cartAction()     {}
func (UpdateQuantity) cartAction() {}
func (ClearCart) cartAction()      {}
func (ToggleOpen) cartAction()     {}
func (OpenCart) cartAction()       {}
func (CloseCart) cartAction()      {}

func (c Cart) Apply(action CartAction) Cart {
	return Reduce(c, action)
}

// Reduce applies one action and returns the next aggregate. The input cart is never modified.
func Reduce(c Cart, action CartAction) Cart {
	switch a := action.(type) {
	case AddItem:
		return c.addItem(a.Product, a.Quantity)
	case RemoveItem:
		return c.removeItem(a.ProductID)
	case UpdateQuantity:
		return c.updateQuantity(a.ProductID, a.Quantity)
	case ClearCart:
		return Cart{Totals: ComputeTotals(nil), IsOpen: c.IsOpen}
	case ToggleOpen:
		c.IsOpen = !c.IsOpen
		return c
	case OpenCart:
		c.IsOpen = true
		return c
	case CloseCart:
		c.IsOpen = false
		return c
	default:
		return c
	}
}

func (c Cart) addItem(product Product, quantity int) Cart {
	quantity = min(max(quantity, 1), MaxLineQuantity)

	lines := slices.Clone(c.Lines)

	_, idx, found := lo.FindIndexOf(lines, func(l CartLine) bool {
		return l.ProductID == product.ID
	})
	if found {
		lines[idx].Quantity = addQuantity(lines[idx].Quantity, quantity)
		return c.withLines(lines)
	}

	lines = append(lines, CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
	})

	return c.withLines(lines)
}

func (c Cart) removeItem(productID uuid.UUID) Cart {
	if _, found := c.Line(productID); !found {
		return c
	}

	lines := lo.Reject(c.Lines, func(l CartLine, _ int) bool {
		return l.ProductID == productID
	})

	return c.withLines(lines)
}

func (c Cart) updateQuantity(productID uuid.UUID, quantity int) Cart {
	if quantity <= 0 {
		return c.removeItem(productID)
	}

	_, idx, found := lo.FindIndexOf(c.Lines, func(l CartLine) bool {
		return l.ProductID == productID
	})
	if !found {
		return c
	}

	lines := slices.Clone(c.Lines)
	lines[idx].Quantity = min(quantity, MaxLineQuantity)

	return c.withLines(lines)
}

func (c Cart) withLines(lines []CartLine) Cart {
	if len(lines) == 0 {
		lines = nil
	}

	return Cart{
		Lines:  lines,
		Totals: ComputeTotals(lines),
		IsOpen: c.IsOpen,
	}
}

var cartIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateCartID accepts IDs that are safe as file names and Redis key suffixes.
func ValidateCartID(cartID string) error {
	if !cartIDPattern.MatchString(cartID) {
		return fmt.Errorf("%w: cart id[%s] must be 1-128 characters of [A-Za-z0-9_-]", ErrValidation, cartID)
	}
	return nil
}
