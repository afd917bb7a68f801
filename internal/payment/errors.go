package payment

import (
	"errors"
)

// Error wraps a billing vendor failure. All live gateway errors surface as
// one kind carrying the vendor message; callers are not expected to branch
// on vendor-specific codes.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "payment gateway " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func vendorError(op string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Op: op, Err: err}
}

var (
	// ErrNotConfigured is returned when an operation needs live gateway
	// credentials but the adapter runs in mock mode.
	ErrNotConfigured = errors.New("payment gateway not configured")

	// ErrAdapterNotFound is returned when no adapter is registered under
	// the requested name.
	ErrAdapterNotFound = errors.New("payment adapter not found")

	// ErrInvalidSignature is returned when a webhook payload fails
	// signature verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
