package domain_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestIntentRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *domain.IntentRequest)
		wantError string
	}{
		{
			name: "valid request: ok",
		},
		{
			name:      "zero amount: fail",
			mutate:    func(r *domain.IntentRequest) { r.AmountMinorUnits = 0 },
			wantError: "amount must be a positive integer, got 0",
		},
		{
			name:      "negative amount: fail",
			mutate:    func(r *domain.IntentRequest) { r.AmountMinorUnits = -100 },
			wantError: "amount must be a positive integer, got -100",
		},
		{
			name:      "empty currency: fail",
			mutate:    func(r *domain.IntentRequest) { r.Currency = currency.Unit{} },
			wantError: "currency is empty",
		},
		{
			name:      "nil order id: fail",
			mutate:    func(r *domain.IntentRequest) { r.Order.OrderID = uuid.Nil },
			wantError: "order_id is empty",
		},
		{
			name:      "malformed email: fail",
			mutate:    func(r *domain.IntentRequest) { r.Order.CustomerEmail = "nobody" },
			wantError: "customer_email[nobody] is not valid",
		},
		{
			name:      "no items: fail",
			mutate:    func(r *domain.IntentRequest) { r.Items = nil },
			wantError: "no items in request",
		},
		{
			name:      "zero quantity item: fail",
			mutate:    func(r *domain.IntentRequest) { r.Items[0].Quantity = 0 },
			wantError: "items[0]: quantity must be at least 1",
		},
		{
			name: "repeated product summing past the cap: fail",
			mutate: func(r *domain.IntentRequest) {
				productID := r.Items[0].ProductID
				r.Items = []domain.RequestedLine{
					{ProductID: productID, Quantity: int(^uint(0) >> 1)},
					{ProductID: productID, Quantity: 2},
				}
			},
			wantError: "items[0]: quantity of product",
		},
		{
			name: "repeated product within the cap: ok",
			mutate: func(r *domain.IntentRequest) {
				productID := r.Items[0].ProductID
				r.Items = []domain.RequestedLine{
					{ProductID: productID, Quantity: domain.MaxLineQuantity - 2},
					{ProductID: productID, Quantity: 2},
				}
			},
		},
		{
			name: "second line pushes product past the cap: fail",
			mutate: func(r *domain.IntentRequest) {
				productID := r.Items[0].ProductID
				r.Items = []domain.RequestedLine{
					{ProductID: productID, Quantity: domain.MaxLineQuantity},
					{ProductID: productID, Quantity: 1},
				}
			},
			wantError: "items[1]: quantity of product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validIntentRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			err := req.Validate()
			if tt.wantError != "" {
				require.ErrorIs(t, err, domain.ErrValidation)
				assert.ErrorContains(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestOrderContext_Metadata(t *testing.T) {
	orderID := uuid.New()
	createdAt := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	m := domain.OrderContext{
		OrderID:      orderID,
		DisplayTotal: "118.80 USD",
		CreatedAt:    createdAt,
	}.Metadata()

	assert.Equal(t, map[string]string{
		"order_id":      orderID.String(),
		"display_total": "118.80 USD",
		"created_at":    "2026-03-01T12:30:00Z",
	}, m)
}

func validIntentRequest() domain.IntentRequest {
	return domain.IntentRequest{
		AmountMinorUnits: 3160,
		Currency:         currency.USD,
		Items: []domain.RequestedLine{
			{ProductID: uuid.New(), Quantity: 1},
		},
		Order: domain.OrderContext{
			OrderID:       uuid.New(),
			CustomerEmail: gofakeit.Email(),
		},
	}
}
