package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type EventKind int

// EventUnknown is the zero value: anything the processor sends that is not
// modelled below is acknowledged and left alone.
const (
	EventUnknown EventKind = iota
	EventRequiresAction
	EventSucceeded
	EventPaymentFailed
	EventCanceled
)

var eventKindsByType = map[string]EventKind{
	"payment_intent.requires_action": EventRequiresAction,
	"payment_intent.succeeded":       EventSucceeded,
	"payment_intent.payment_failed":  EventPaymentFailed,
	"payment_intent.canceled":        EventCanceled,
}

func ToEventKind(eventType string) EventKind {
	return eventKindsByType[eventType]
}

func (k EventKind) String() string {
	switch k {
	case EventRequiresAction:
		return "requires_action"
	case EventSucceeded:
		return "succeeded"
	case EventPaymentFailed:
		return "payment_failed"
	case EventCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// TargetState is the payment state an event of this kind moves an order to.
func (k EventKind) TargetState() (PaymentState, bool) {
	switch k {
	case EventRequiresAction:
		return PaymentStateRequiresAction, true
	case EventSucceeded:
		return PaymentStateSucceeded, true
	case EventPaymentFailed:
		return PaymentStateFailed, true
	case EventCanceled:
		return PaymentStateCanceled, true
	default:
		return "", false
	}
}

type PaymentEvent struct {
	ID       string
	Type     string
	Kind     EventKind
	IntentID string
	OrderID  uuid.UUID
	HasOrder bool
}

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ParsePaymentEvent decodes an already authenticated webhook body.
// The order is taken from the intent metadata only; the intent ID is kept
// for logging and never interpreted.
func ParsePaymentEvent(payload []byte) (PaymentEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return PaymentEvent{}, fmt.Errorf("%w: json.Unmarshal: %w", ErrValidation, err)
	}

	if env.ID == "" || env.Type == "" {
		return PaymentEvent{}, fmt.Errorf("%w: event id or type is empty", ErrValidation)
	}

	event := PaymentEvent{
		ID:       env.ID,
		Type:     env.Type,
		Kind:     ToEventKind(env.Type),
		IntentID: env.Data.Object.ID,
	}

	if raw, ok := env.Data.Object.Metadata[MetadataOrderID]; ok {
		if orderID, err := uuid.Parse(raw); err == nil && orderID != uuid.Nil {
			event.OrderID = orderID
			event.HasOrder = true
		}
	}

	return event, nil
}
