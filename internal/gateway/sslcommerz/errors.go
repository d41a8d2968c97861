package sslcommerz

import "errors"

var (
	// ErrDeclined: the gateway processed the request and rejected it.
	ErrDeclined = errors.New("gateway declined session")
	// ErrUnavailable: the call itself failed (transport, non-200,
	// malformed body). The caller cannot tell whether the gateway saw it.
	ErrUnavailable = errors.New("gateway unavailable")
)
