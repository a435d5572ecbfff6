package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentInit    PaymentStatus = "INIT"
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment references its Order by id only; orders and payments live on
// opposite sides of a trust boundary and are never joined relationally.
// A row is written for every attempted charge, failed ones included.
type Payment struct {
	PaymentID int64
	OrderID   int64
	Amount    decimal.Decimal
	Method    PaymentMethod
	Status    PaymentStatus
	Reference string
	CreatedAt time.Time
}

// IdempotencyRecord maps (client key, canonical request hash) to the response
// that was returned for the first attempt. Rows are created in the same
// transaction as their Payment and are never updated.
type IdempotencyRecord struct {
	ID           int64
	Key          string
	RequestHash  string
	ResponseBody []byte
	CreatedAt    time.Time
}
