package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
)

type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeStale     Outcome = "stale"
	OutcomeIgnored   Outcome = "ignored"
)

// Ack describes what happened to an acknowledged webhook.
type Ack struct {
	Outcome Outcome
	EventID string
	OrderID uuid.UUID
	From    domain.PaymentState
	To      domain.PaymentState
}

const maxSwapAttempts = 3

// Reconciler turns authenticated processor notifications into order payment
// state transitions. Deliveries may repeat or arrive out of order; the
// compare-and-swap on the order state keeps the result the same.
type Reconciler struct {
	verifier  port.SignatureVerifier
	orders    port.OrderRepository
	ledger    port.EventLedger
	publisher port.PaymentStatePublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewReconciler(
	verifier port.SignatureVerifier,
	orders port.OrderRepository,
	ledger port.EventLedger,
	publisher port.PaymentStatePublisher,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		verifier:  verifier,
		orders:    orders,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleWebhook returns domain.ErrAuthentication for requests that fail
// verification and domain.ErrInternal when the processor should redeliver.
// Every other authenticated delivery is acknowledged.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload []byte, signature string) (Ack, error) {
	if err := r.verifier.Verify(payload, signature); err != nil {
		r.logger.WarnContext(ctx, "webhook signature rejected", "error", err)
		return Ack{}, err
	}

	event, err := domain.ParsePaymentEvent(payload)
	if err != nil {
		r.logger.WarnContext(ctx, "authenticated webhook event is not decodable, ignoring", "error", err)
		return Ack{Outcome: OutcomeIgnored}, nil
	}

	logger := r.logger.With("event_id", event.ID, "event_type", event.Type)
	ack := Ack{EventID: event.ID, OrderID: event.OrderID}

	if r.seen(ctx, logger, event.ID) {
		logger.InfoContext(ctx, "webhook event already reconciled")
		ack.Outcome = OutcomeDuplicate
		return ack, nil
	}

	target, ok := event.Kind.TargetState()
	if !ok {
		logger.InfoContext(ctx, "webhook event ignored")
		ack.Outcome = OutcomeIgnored
		return ack, nil
	}

	if !event.HasOrder {
		logger.WarnContext(ctx, "webhook event has no order_id metadata", "payment_intent_id", event.IntentID)
		ack.Outcome = OutcomeIgnored
		return ack, nil
	}

	ack, err = r.transition(ctx, event, target)
	if err != nil {
		logger.ErrorContext(ctx, "webhook reconciliation failed", "order_id", event.OrderID, "error", err)
		return ack, err
	}

	logger.InfoContext(ctx, "webhook reconciled",
		"order_id", event.OrderID,
		"outcome", ack.Outcome,
		"from", ack.From,
		"to", ack.To)

	if ack.Outcome == OutcomeApplied {
		r.publish(ctx, logger, domain.PaymentStateChanged{
			OrderID:    event.OrderID,
			From:       ack.From,
			To:         ack.To,
			EventID:    event.ID,
			IntentID:   event.IntentID,
			OccurredAt: r.now(),
		})
	}

	r.remember(ctx, logger, event.ID)

	return ack, nil
}

func (r *Reconciler) transition(ctx context.Context, event domain.PaymentEvent, target domain.PaymentState) (Ack, error) {
	ack := Ack{EventID: event.ID, OrderID: event.OrderID}

	for range maxSwapAttempts {
		current, err := r.orders.GetPaymentState(ctx, event.OrderID)
		if err != nil {
			return ack, fmt.Errorf("%w: orders.GetPaymentState: %w", domain.ErrInternal, err)
		}

		if !domain.CanTransition(current, target) {
			ack.Outcome = OutcomeStale
			ack.From = current
			ack.To = current
			return ack, nil
		}

		swapped, err := r.orders.CompareAndSwapPaymentState(ctx, event.OrderID, current, target, event.IntentID)
		if err != nil {
			return ack, fmt.Errorf("%w: orders.CompareAndSwapPaymentState: %w", domain.ErrInternal, err)
		}

		if swapped {
			ack.Outcome = OutcomeApplied
			ack.From = current
			ack.To = target
			return ack, nil
		}
	}

	return ack, fmt.Errorf("%w: order[%s] payment state kept changing after %d attempts", domain.ErrInternal, event.OrderID, maxSwapAttempts)
}

func (r *Reconciler) seen(ctx context.Context, logger *slog.Logger, eventID string) bool {
	if r.ledger == nil {
		return false
	}

	seen, err := r.ledger.Seen(ctx, eventID)
	if err != nil {
		logger.WarnContext(ctx, "event ledger lookup failed", "error", err)
		return false
	}

	return seen
}

func (r *Reconciler) remember(ctx context.Context, logger *slog.Logger, eventID string) {
	if r.ledger == nil {
		return
	}

	if err := r.ledger.Remember(ctx, eventID); err != nil {
		logger.WarnContext(ctx, "event ledger write failed", "error", err)
	}
}

func (r *Reconciler) publish(ctx context.Context, logger *slog.Logger, change domain.PaymentStateChanged) {
	if r.publisher == nil {
		return
	}

	if err := r.publisher.Publish(ctx, change); err != nil {
		logger.ErrorContext(ctx, "payment state change not published", "order_id", change.OrderID, "error", err)
	}
}
