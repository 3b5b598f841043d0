package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []domain.CartLine
		wantSubtotal string
		wantShipping string
		wantTax      string
		wantTotal    string
		wantMinor    int64
	}{
		{
			name:         "no lines: all zero",
			wantSubtotal: "0",
			wantShipping: "0",
			wantTax:      "0",
			wantTotal:    "0",
			wantMinor:    0,
		},
		{
			name:         "30x2 and 50x1: free shipping",
			lines:        []domain.CartLine{line("30", 2), line("50", 1)},
			wantSubtotal: "110",
			wantShipping: "0",
			wantTax:      "8.8",
			wantTotal:    "118.8",
			wantMinor:    11880,
		},
		{
			name:         "20x1: flat shipping",
			lines:        []domain.CartLine{line("20", 1)},
			wantSubtotal: "20",
			wantShipping: "10",
			wantTax:      "1.6",
			wantTotal:    "31.6",
			wantMinor:    3160,
		},
		{
			name:         "subtotal exactly at threshold: shipping charged",
			lines:        []domain.CartLine{line("100.00", 1)},
			wantSubtotal: "100",
			wantShipping: "10",
			wantTax:      "8",
			wantTotal:    "118",
			wantMinor:    11800,
		},
		{
			name:         "subtotal one cent above threshold: free shipping",
			lines:        []domain.CartLine{line("100.01", 1)},
			wantSubtotal: "100.01",
			wantShipping: "0",
			wantTax:      "8.0008",
			wantTotal:    "108.0108",
			wantMinor:    10801,
		},
		{
			name:         "no intermediate rounding: tax keeps full precision",
			lines:        []domain.CartLine{line("19.99", 1)},
			wantSubtotal: "19.99",
			wantShipping: "10",
			wantTax:      "1.5992",
			wantTotal:    "31.5892",
			wantMinor:    3159,
		},
		{
			name:         "fractional cents are rounded once at the end",
			lines:        []domain.CartLine{line("0.0625", 1)},
			wantSubtotal: "0.0625",
			wantShipping: "10",
			wantTax:      "0.005",
			wantTotal:    "10.0675",
			wantMinor:    1007,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := domain.ComputeTotals(tt.lines)

			assertDecimal(t, tt.wantSubtotal, totals.Subtotal)
			assertDecimal(t, tt.wantShipping, totals.Shipping)
			assertDecimal(t, tt.wantTax, totals.Tax)
			assertDecimal(t, tt.wantTotal, totals.Total)
			assert.Equal(t, tt.wantMinor, totals.MinorUnits())
		})
	}
}

func TestMinorUnitsConversion(t *testing.T) {
	assert.Equal(t, int64(11880), domain.ToMinorUnits(decimal.RequireFromString("118.80")))
	assert.Equal(t, int64(1), domain.ToMinorUnits(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(0), domain.ToMinorUnits(decimal.RequireFromString("0.0049")))
	assertDecimal(t, "118.8", domain.FromMinorUnits(11880))
}

func TestChargeableMinorUnits(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		want      int64
		wantError string
	}{
		{name: "regular amount: ok", amount: "118.80", want: 11880},
		{name: "half cent rounds up: ok", amount: "0.005", want: 1},
		{name: "zero: ok", amount: "0", want: 0},
		{name: "negative: fail", amount: "-0.01", wantError: "amount[-0.01] is negative"},
		{name: "beyond int64 cents: fail", amount: "298837253994094736136.8", wantError: "amount[298837253994094736136.8] does not fit in minor units"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ChargeableMinorUnits(decimal.RequireFromString(tt.amount))
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func line(price string, qty int) domain.CartLine {
	return domain.CartLine{
		ProductID: uuid.New(),
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()

	want := decimal.RequireFromString(expected)
	assert.Truef(t, want.Equal(actual), "expected %s, got %s", want, actual)
}
