package payment

import "errors"

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrBadTransactionID   = errors.New("missing or malformed transaction id")
	ErrUnknownUser        = errors.New("transaction id does not map to a known user")
	ErrGatewayDeclined    = errors.New("gateway declined the payment intent")
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	ErrNotFound           = errors.New("payment not found")
	ErrForbidden          = errors.New("not allowed to view this payment")
)
