package httpapi

import (
	"encoding/json"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/samber/lo"
)

type CreateIntentRequest struct {
	Amount       json.Number        `json:"amount"`
	Currency     string             `json:"currency"`
	Items        []RequestedItemDTO `json:"items"`
	OrderContext OrderContextDTO    `json:"order_context"`
}

type RequestedItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderContextDTO struct {
	OrderID       string `json:"order_id"`
	CustomerEmail string `json:"customer_email"`
}

type IntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Status          string `json:"status"`
	Simulated       bool   `json:"simulated"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Lines            []CartLineResponse `json:"lines"`
	Subtotal         string             `json:"subtotal"`
	Shipping         string             `json:"shipping"`
	Tax              string             `json:"tax"`
	Total            string             `json:"total"`
	AmountMinorUnits int64              `json:"amount_minor_units"`
	IsOpen           bool               `json:"is_open"`
}

type CartLineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type RegisterOrderRequest struct {
	OrderID       string      `json:"order_id"`
	CustomerEmail string      `json:"customer_email"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
}

type OrderResponse struct {
	OrderID          string    `json:"order_id"`
	CustomerEmail    string    `json:"customer_email,omitempty"`
	Total            string    `json:"total"`
	AmountMinorUnits int64     `json:"amount_minor_units"`
	Currency         string    `json:"currency"`
	PaymentState     string    `json:"payment_state"`
	PaymentIntentID  string    `json:"payment_intent_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func mapIntentToResponse(h domain.IntentHandle) IntentResponse {
	return IntentResponse{
		ClientSecret:    h.ClientSecret,
		PaymentIntentID: h.ID,
		Status:          h.Status,
		Simulated:       h.Simulated,
	}
}

func mapOrderToResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		OrderID:          o.ID.String(),
		CustomerEmail:    o.CustomerEmail,
		Total:            o.Total.Amount.StringFixed(2),
		AmountMinorUnits: domain.ToMinorUnits(o.Total.Amount),
		Currency:         o.Total.Currency.String(),
		PaymentState:     string(o.PaymentState),
		PaymentIntentID:  o.PaymentIntentID,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// mapCartToResponse renders amounts with two decimals; the stored values keep full precision.
func mapCartToResponse(c domain.Cart) CartResponse {
	return CartResponse{
		Lines: lo.Map(c.Lines, func(l domain.CartLine, _ int) CartLineResponse {
			return CartLineResponse{
				ProductID: l.ProductID.String(),
				Name:      l.Name,
				UnitPrice: l.UnitPrice.StringFixed(2),
				Quantity:  l.Quantity,
				LineTotal: l.LineTotal().StringFixed(2),
			}
		}),
		Subtotal:         c.Subtotal.StringFixed(2),
		Shipping:         c.Shipping.StringFixed(2),
		Tax:              c.Tax.StringFixed(2),
		Total:            c.Total.StringFixed(2),
		AmountMinorUnits: c.MinorUnits(),
		IsOpen:           c.IsOpen,
	}
}
