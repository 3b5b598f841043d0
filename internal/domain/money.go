package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// String renders the amount with two decimal places and the upper-case ISO code, e.g. "118.80 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency.String())
}

// ToMinorUnits converts a decimal amount into cents, rounding half away from zero.
// It is the only place where rounding is applied to a monetary value.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// ChargeableMinorUnits is ToMinorUnits for amounts sent to the processor or
// stored on an order: negative amounts and amounts beyond int64 cents fail.
func ChargeableMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount[%s] is negative", amount)
	}

	minor := amount.Shift(2).Round(0).BigInt()
	if !minor.IsInt64() {
		return 0, fmt.Errorf("amount[%s] does not fit in minor units", amount)
	}

	return minor.Int64(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ParseCurrency accepts ISO 4217 codes in any case ("usd", "USD").
func ParseCurrency(s string) (currency.Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return currency.Unit{}, fmt.Errorf("currency is empty")
	}

	unit, err := currency.ParseISO(strings.ToUpper(s))
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", s, err)
	}

	return unit, nil
}
