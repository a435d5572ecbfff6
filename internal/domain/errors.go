package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by lookups that resolve to no row.
	ErrNotFound = errors.New("not found")

	// ErrIdempotencyKeyRequired rejects a charge before any charge logic runs.
	ErrIdempotencyKeyRequired = errors.New("idempotency key required in header as 'Idempotency-Key'")

	// ErrIdempotencyConflict is the storage layer's translation of a unique
	// violation on (key, request_hash): another writer won the insert.
	ErrIdempotencyConflict = errors.New("idempotency record already exists")
)

// ValidationError covers bad request shape and business-rule violations,
// including catalog lookups that resolve to "not usable". It is always raised
// before any persistence.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

func Validationf(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// UpstreamError is a transport-level failure reaching a collaborator. The
// outcome of the remote operation is indeterminate and must be treated as
// failed, never assumed successful.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PaymentDeclinedError reports an explicit FAILED charge outcome. The Payment
// row exists by the time this error is returned.
type PaymentDeclinedError struct {
	OrderID int64
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined for order %d", e.OrderID)
}
