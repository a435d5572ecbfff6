package payments

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"

	"swifteats/internal/domain"
)

// ChargeRequest is the logical charge payload. Two requests with the same
// order, amount and method are the same charge no matter how the client
// serialized them.
type ChargeRequest struct {
	OrderID int64
	Amount  decimal.Decimal
	Method  domain.PaymentMethod
}

// RequestHash hashes the canonical serialization of the payload: keys in
// sorted order, amount fixed to two decimals. 100, 100.0 and 100.00 hash
// identically.
func RequestHash(req ChargeRequest) string {
	canonical := fmt.Sprintf(`{"amount":"%s","method":"%s","order_id":%d}`,
		req.Amount.StringFixed(2), req.Method, req.OrderID)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
