package domain

import "errors"

type PaymentState string

// remember to add new states to the validPaymentStates map
const (
	PaymentStateCreated        PaymentState = "created"
	PaymentStateRequiresAction PaymentState = "requires_action"
	PaymentStateSucceeded      PaymentState = "succeeded"
	PaymentStateFailed         PaymentState = "failed"
	PaymentStateCanceled       PaymentState = "canceled"
)

var validPaymentStates = map[PaymentState]struct{}{
	PaymentStateCreated:        {},
	PaymentStateRequiresAction: {},
	PaymentStateSucceeded:      {},
	PaymentStateFailed:         {},
	PaymentStateCanceled:       {},
}

// allowed successors of every non-terminal state
var paymentTransitions = map[PaymentState][]PaymentState{
	PaymentStateCreated: {
		PaymentStateRequiresAction,
		PaymentStateSucceeded,
		PaymentStateFailed,
		PaymentStateCanceled,
	},
	PaymentStateRequiresAction: {
		PaymentStateSucceeded,
		PaymentStateFailed,
		PaymentStateCanceled,
	},
}

func ToPaymentState(s string) (PaymentState, error) {
	state := PaymentState(s)
	if _, ok := validPaymentStates[state]; ok {
		return state, nil
	}

	return "", errors.New("invalid payment state")
}

func PaymentStates() []PaymentState {
	result := make([]PaymentState, 0, len(validPaymentStates))
	for state := range validPaymentStates {
		result = append(result, state)
	}
	return result
}

func (s PaymentState) IsTerminal() bool {
	switch s {
	case PaymentStateSucceeded, PaymentStateFailed, PaymentStateCanceled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether from -> to is a forward move of the state machine.
// Self-transitions are not transitions.
func CanTransition(from, to PaymentState) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
