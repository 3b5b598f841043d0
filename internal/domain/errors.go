package domain

import "errors"

var (
	// ErrValidation marks caller mistakes: bad amount, unknown product, undecodable event.
	ErrValidation = errors.New("validation failed")
	// ErrAuthentication marks webhook requests whose signature could not be verified.
	ErrAuthentication = errors.New("authentication failed")
	// ErrUpstream marks failures of the payment processor. Safe to retry.
	ErrUpstream = errors.New("payment processor unavailable")
	// ErrInternal marks failures of a collaborator while reconciling. The processor redelivers.
	ErrInternal = errors.New("internal reconciliation error")

	ErrNotFound        = errors.New("order not found")
	ErrOrderExists     = errors.New("order already exists")
	ErrProductNotFound = errors.New("product not found")
)
