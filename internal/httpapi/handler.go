package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/service"
)

const (
	maxWebhookBody       = 1 << 20
	signatureHeader      = "Stripe-Signature"
	idempotencyKeyHeader = "Idempotency-Key"
)

type IntentCreator interface {
	CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.IntentHandle, error)
}

type WebhookReconciler interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (service.Ack, error)
}

type CartSessions interface {
	Get(ctx context.Context, cartID string) (domain.Cart, error)
	AddProduct(ctx context.Context, cartID string, productID uuid.UUID, quantity int) (domain.Cart, error)
	RemoveProduct(ctx context.Context, cartID string, productID uuid.UUID) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartID string, productID uuid.UUID, quantity int) (domain.Cart, error)
	Clear(ctx context.Context, cartID string) (domain.Cart, error)
	ToggleOpen(ctx context.Context, cartID string) (domain.Cart, error)
}

type OrderRegistry interface {
	Register(ctx context.Context, order domain.Order) (domain.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
}

type Handler struct {
	intents    IntentCreator
	reconciler WebhookReconciler
	carts      CartSessions
	orders     OrderRegistry
	logger     *slog.Logger
}

func NewHandler(intents IntentCreator, reconciler WebhookReconciler, carts CartSessions, orders OrderRegistry, logger *slog.Logger) *Handler {
	return &Handler{
		intents:    intents,
		reconciler: reconciler,
		carts:      carts,
		orders:     orders,
		logger:     logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreatePaymentIntent answers 201 with the client secret the browser confirms the payment with.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var body CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_json", err)
		return
	}

	req, err := toIntentRequest(body)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	req.IdempotencyKey = r.Header.Get(idempotencyKeyHeader)

	handle, err := h.intents.CreateIntent(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapIntentToResponse(handle))
}

// HandlePaymentWebhook acknowledges every authenticated event with 200,
// including duplicates and stale ones, so the processor stops redelivering.
func (h *Handler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", err)
			return
		}
		h.writeError(w, r, http.StatusBadRequest, "unreadable_body", err)
		return
	}

	if _, err := h.reconciler.HandleWebhook(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, WebhookResponse{Received: true})
}

// RegisterOrder hands an order over before its intent is confirmed, so the
// payment webhook finds a state to move.
func (h *Handler) RegisterOrder(w http.ResponseWriter, r *http.Request) {
	var body RegisterOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_json", err)
		return
	}

	order, err := toOrder(body)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	stored, err := h.orders.Register(r.Context(), order)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapOrderToResponse(stored))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeDomainError(w, r, fmt.Errorf("%w: order_id[%s] is not a uuid", domain.ErrValidation, chi.URLParam(r, "orderID")))
		return
	}

	order, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Get(r.Context(), chi.URLParam(r, "cartID"))
	h.writeCart(w, r, cart, err)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var body AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_json", err)
		return
	}

	productID, err := parseProductID(body.ProductID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	cart, err := h.carts.AddProduct(r.Context(), chi.URLParam(r, "cartID"), productID, body.Quantity)
	h.writeCart(w, r, cart, err)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var body UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_json", err)
		return
	}

	productID, err := parseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), chi.URLParam(r, "cartID"), productID, body.Quantity)
	h.writeCart(w, r, cart, err)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	cart, err := h.carts.RemoveProduct(r.Context(), chi.URLParam(r, "cartID"), productID)
	h.writeCart(w, r, cart, err)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.Clear(r.Context(), chi.URLParam(r, "cartID"))
	h.writeCart(w, r, cart, err)
}

func (h *Handler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.ToggleOpen(r.Context(), chi.URLParam(r, "cartID"))
	h.writeCart(w, r, cart, err)
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, cart domain.Cart, err error) {
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartToResponse(cart))
}

func toIntentRequest(body CreateIntentRequest) (domain.IntentRequest, error) {
	var req domain.IntentRequest

	if body.Amount != "" {
		amount, err := strconv.ParseInt(body.Amount.String(), 10, 64)
		if err != nil {
			return req, fmt.Errorf("%w: amount[%s] must be a positive integer", domain.ErrValidation, body.Amount)
		}
		req.AmountMinorUnits = amount
	}

	if body.Currency != "" {
		unit, err := domain.ParseCurrency(body.Currency)
		if err != nil {
			return req, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		req.Currency = unit
	}

	if body.OrderContext.OrderID != "" {
		orderID, err := uuid.Parse(body.OrderContext.OrderID)
		if err != nil {
			return req, fmt.Errorf("%w: order_id[%s] is not a uuid", domain.ErrValidation, body.OrderContext.OrderID)
		}
		req.Order.OrderID = orderID
	}
	req.Order.CustomerEmail = body.OrderContext.CustomerEmail

	for i, item := range body.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return req, fmt.Errorf("%w: items[%d]: product_id[%s] is not a uuid", domain.ErrValidation, i, item.ProductID)
		}
		if err := domain.ValidateQuantity(item.Quantity); err != nil {
			return req, fmt.Errorf("items[%d]: %w", i, err)
		}
		req.Items = append(req.Items, domain.RequestedLine{ProductID: productID, Quantity: item.Quantity})
	}

	return req, nil
}

func toOrder(body RegisterOrderRequest) (domain.Order, error) {
	var order domain.Order

	orderID, err := uuid.Parse(body.OrderID)
	if err != nil {
		return order, fmt.Errorf("%w: order_id[%s] is not a uuid", domain.ErrValidation, body.OrderID)
	}
	order.ID = orderID
	order.CustomerEmail = body.CustomerEmail

	amount, err := strconv.ParseInt(body.Amount.String(), 10, 64)
	if err != nil {
		return order, fmt.Errorf("%w: amount[%s] must be a positive integer", domain.ErrValidation, body.Amount)
	}

	unit, err := domain.ParseCurrency(body.Currency)
	if err != nil {
		return order, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	order.Total = domain.Money{Amount: domain.FromMinorUnits(amount), Currency: unit}

	return order, nil
}

func parseProductID(raw string) (uuid.UUID, error) {
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: product_id[%s] is not a uuid", domain.ErrValidation, raw)
	}
	return productID, nil
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthentication):
		h.logger.WarnContext(r.Context(), "webhook rejected", "remote_addr", r.RemoteAddr, "error", err)
		writeError(w, http.StatusBadRequest, "authentication_failed", "signature verification failed")
	case errors.Is(err, domain.ErrValidation):
		h.writeError(w, r, http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, domain.ErrProductNotFound):
		h.writeError(w, r, http.StatusNotFound, "product_not_found", err)
	case errors.Is(err, domain.ErrUpstream):
		h.writeError(w, r, http.StatusInternalServerError, "upstream_error", err)
	case errors.Is(err, domain.ErrInternal):
		h.writeError(w, r, http.StatusInternalServerError, "internal_error", err)
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, "order_not_found", err)
	case errors.Is(err, domain.ErrOrderExists):
		h.writeError(w, r, http.StatusConflict, "order_exists", err)
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)

	writeError(w, status, code, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Details: details,
	})
}
