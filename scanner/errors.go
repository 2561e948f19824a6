package scanner

import "errors"

var (
	ErrInvalidBarcode     = errors.New("barcode must contain only digits, spaces and hyphens")
	ErrInvalidCredentials = errors.New("login incorrect")
	ErrLoginFailed        = errors.New("login failed")
	ErrNoSession          = errors.New("not logged in")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
	ErrMalformedResponse  = errors.New("malformed lookup response")
	ErrUnterminatedQuote  = errors.New("unterminated quoted field")
)
