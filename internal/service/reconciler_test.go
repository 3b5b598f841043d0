package service_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/ledger"
	"github.com/nikolayk812/checkoutpay/internal/port"
	"github.com/nikolayk812/checkoutpay/internal/processor"
	"github.com/nikolayk812/checkoutpay/internal/repository"
	"github.com/nikolayk812/checkoutpay/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
	"golang.org/x/text/currency"
)

const webhookSecret = "whsec_test_secret"

type recordingPublisher struct {
	changes []domain.PaymentStateChanged
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, change domain.PaymentStateChanged) error {
	p.changes = append(p.changes, change)
	return p.err
}

type brokenLedger struct{}

func (brokenLedger) Seen(context.Context, string) (bool, error) { return false, errors.New("redis down") }
func (brokenLedger) Remember(context.Context, string) error     { return errors.New("redis down") }

// contendedOrders always loses the compare-and-swap.
type contendedOrders struct {
	port.OrderRepository
	swaps int
}

func (o *contendedOrders) CompareAndSwapPaymentState(context.Context, uuid.UUID, domain.PaymentState, domain.PaymentState, string) (bool, error) {
	o.swaps++
	return false, nil
}

type fixture struct {
	orders     port.OrderRepository
	publisher  *recordingPublisher
	reconciler *service.Reconciler
	orderID    uuid.UUID
}

func newFixture(t *testing.T, eventLedger port.EventLedger) fixture {
	t.Helper()

	orders := repository.NewMemoryOrder()
	orderID, err := orders.InsertOrder(t.Context(), domain.Order{
		CustomerEmail: "ann@example.com",
		Total:         domain.Money{Amount: decimal.RequireFromString("118.80"), Currency: currency.USD},
	})
	require.NoError(t, err)

	publisher := &recordingPublisher{}

	return fixture{
		orders:     orders,
		publisher:  publisher,
		reconciler: service.NewReconciler(processor.NewVerifier(webhookSecret, 5*time.Minute), orders, eventLedger, publisher, discardLogger()),
		orderID:    orderID,
	}
}

func (f fixture) state(t *testing.T) domain.PaymentState {
	t.Helper()

	state, err := f.orders.GetPaymentState(t.Context(), f.orderID)
	require.NoError(t, err)
	return state
}

func eventPayload(t *testing.T, eventID, eventType string, metadata map[string]string) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"id":   eventID,
		"type": eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":       "pi_123",
				"object":   "payment_intent",
				"metadata": metadata,
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func sign(payload []byte) string {
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, webhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func TestReconciler_SucceededDeliveredTwice(t *testing.T) {
	tests := []struct {
		name          string
		ledger        port.EventLedger
		secondOutcome service.Outcome
	}{
		{name: "with ledger: duplicate", ledger: ledger.NewMemory(time.Hour), secondOutcome: service.OutcomeDuplicate},
		{name: "without ledger: stale", ledger: nil, secondOutcome: service.OutcomeStale},
		{name: "broken ledger: stale", ledger: brokenLedger{}, secondOutcome: service.OutcomeStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.ledger)
			payload := eventPayload(t, "evt_1", "payment_intent.succeeded", map[string]string{"order_id": f.orderID.String()})

			ack, err := f.reconciler.HandleWebhook(t.Context(), payload, sign(payload))
			require.NoError(t, err)
			assert.Equal(t, service.OutcomeApplied, ack.Outcome)
			assert.Equal(t, domain.PaymentStateCreated, ack.From)
			assert.Equal(t, domain.PaymentStateSucceeded, ack.To)
			assert.Equal(t, domain.PaymentStateSucceeded, f.state(t))

			ack, err = f.reconciler.HandleWebhook(t.Context(), payload, sign(payload))
			require.NoError(t, err)
			assert.Equal(t, tt.secondOutcome, ack.Outcome)
			assert.Equal(t, domain.PaymentStateSucceeded, f.state(t))

			require.Len(t, f.publisher.changes, 1, "only the durable transition is published")
			assert.Equal(t, f.orderID, f.publisher.changes[0].OrderID)
			assert.Equal(t, "pi_123", f.publisher.changes[0].IntentID)

			order, err := f.orders.GetOrder(t.Context(), f.orderID)
			require.NoError(t, err)
			assert.Equal(t, "pi_123", order.PaymentIntentID)
		})
	}
}

func TestReconciler_TamperedSignature(t *testing.T) {
	f := newFixture(t, ledger.NewMemory(time.Hour))
	payload := eventPayload(t, "evt_1", "payment_intent.succeeded", map[string]string{"order_id": f.orderID.String()})

	tampered := eventPayload(t, "evt_1", "payment_intent.succeeded", map[string]string{"order_id": f.orderID.String(), "x": "y"})

	_, err := f.reconciler.HandleWebhook(t.Context(), tampered, sign(payload))
	require.ErrorIs(t, err, domain.ErrAuthentication)

	_, err = f.reconciler.HandleWebhook(t.Context(), payload, "")
	require.ErrorIs(t, err, domain.ErrAuthentication)

	assert.Equal(t, domain.PaymentStateCreated, f.state(t))
	assert.Empty(t, f.publisher.changes)
}

func TestReconciler_Dispatch(t *testing.T) {
	tests := []struct {
		name        string
		initial     domain.PaymentState
		eventType   string
		metadata    func(orderID uuid.UUID) map[string]string
		wantOutcome service.Outcome
		wantState   domain.PaymentState
	}{
		{
			name:        "unknown event type: ignored",
			eventType:   "charge.refunded",
			wantOutcome: service.OutcomeIgnored,
			wantState:   domain.PaymentStateCreated,
		},
		{
			name:        "no order metadata: ignored",
			eventType:   "payment_intent.succeeded",
			metadata:    func(uuid.UUID) map[string]string { return nil },
			wantOutcome: service.OutcomeIgnored,
			wantState:   domain.PaymentStateCreated,
		},
		{
			name:        "garbage order metadata: ignored",
			eventType:   "payment_intent.succeeded",
			metadata:    func(uuid.UUID) map[string]string { return map[string]string{"order_id": "42"} },
			wantOutcome: service.OutcomeIgnored,
			wantState:   domain.PaymentStateCreated,
		},
		{
			name:        "payment failed: applied",
			eventType:   "payment_intent.payment_failed",
			wantOutcome: service.OutcomeApplied,
			wantState:   domain.PaymentStateFailed,
		},
		{
			name:        "canceled: applied",
			eventType:   "payment_intent.canceled",
			wantOutcome: service.OutcomeApplied,
			wantState:   domain.PaymentStateCanceled,
		},
		{
			name:        "requires action: applied",
			eventType:   "payment_intent.requires_action",
			wantOutcome: service.OutcomeApplied,
			wantState:   domain.PaymentStateRequiresAction,
		},
		{
			name:        "succeeded after requires action: applied",
			initial:     domain.PaymentStateRequiresAction,
			eventType:   "payment_intent.succeeded",
			wantOutcome: service.OutcomeApplied,
			wantState:   domain.PaymentStateSucceeded,
		},
		{
			name:        "failure after success arrives late: stale",
			initial:     domain.PaymentStateSucceeded,
			eventType:   "payment_intent.payment_failed",
			wantOutcome: service.OutcomeStale,
			wantState:   domain.PaymentStateSucceeded,
		},
		{
			name:        "requires action after success arrives late: stale",
			initial:     domain.PaymentStateSucceeded,
			eventType:   "payment_intent.requires_action",
			wantOutcome: service.OutcomeStale,
			wantState:   domain.PaymentStateSucceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, ledger.NewMemory(time.Hour))

			if tt.initial != "" {
				require.NoError(t, f.orders.SetPaymentState(t.Context(), f.orderID, tt.initial))
			}

			metadata := map[string]string{"order_id": f.orderID.String()}
			if tt.metadata != nil {
				metadata = tt.metadata(f.orderID)
			}

			payload := eventPayload(t, "evt_"+uuid.NewString(), tt.eventType, metadata)

			ack, err := f.reconciler.HandleWebhook(t.Context(), payload, sign(payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, ack.Outcome)
			assert.Equal(t, tt.wantState, f.state(t))
		})
	}
}

func TestReconciler_Failures(t *testing.T) {
	t.Run("undecodable payload: acknowledged and ignored", func(t *testing.T) {
		f := newFixture(t, nil)

		for _, payload := range [][]byte{
			[]byte(`{"id":`),
			[]byte(`{"type":"payment_intent.succeeded"}`),
			[]byte(`{"id":"evt_1"}`),
		} {
			ack, err := f.reconciler.HandleWebhook(t.Context(), payload, sign(payload))
			require.NoError(t, err, string(payload))
			assert.Equal(t, service.OutcomeIgnored, ack.Outcome)
		}

		assert.Equal(t, domain.PaymentStateCreated, f.state(t))
		assert.Empty(t, f.publisher.changes)
	})

	t.Run("unknown order: internal", func(t *testing.T) {
		f := newFixture(t, nil)
		payload := eventPayload(t, "evt_1", "payment_intent.succeeded", map[string]string{"order_id": uuid.NewString()})

		_, err := f.reconciler.HandleWebhook(t.Context(), payload, sign(payload))
		require.ErrorIs(t, err, domain.ErrInternal)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("order keeps changing: internal after bounded attempts", func(t *testing.T) {
		f := newFixture(t, nil)
		orders := &contendedOrders{OrderRepository: f.orders}
		reconciler := service.NewReconciler(processor.NewVerifier(webhookSecret, time.Minute), orders, nil, nil, discardLogger())

		payload := eventPayload(t, "evt_1", "payment_intent.succeeded", map[string]string{"order_id": f.orderID.String()})

		_, err := reconciler.HandleWebhook(t.Context(), payload, sign(payload))
		require.ErrorIs(t, err, domain.ErrInternal)
		assert.Equal(t, 3, orders.swaps)
	})

	t.Run("publish failure: still applied", func(t *testing.T) {
		f := newFixture(t, nil)
		f.publisher.err = errors.New("broker down")

		payload := eventPayload(t, "evt_1", "payment_intent.succeeded", map[string]string{"order_id": f.orderID.String()})

		ack, err := f.reconciler.HandleWebhook(t.Context(), payload, sign(payload))
		require.NoError(t, err)
		assert.Equal(t, service.OutcomeApplied, ack.Outcome)
		assert.Equal(t, domain.PaymentStateSucceeded, f.state(t))
	})
}
