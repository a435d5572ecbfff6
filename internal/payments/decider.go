package payments

import (
	"context"
	"math/rand/v2"

	"swifteats/internal/domain"
)

// Decider resolves the outcome of a non-COD charge. It must return
// PaymentSuccess or PaymentFailed; the COD-is-PENDING rule is part of the
// engine contract, not the decider's. A production implementation would call
// a real payment processor.
type Decider interface {
	Decide(ctx context.Context, req ChargeRequest) domain.PaymentStatus
}

// DemoDecider approves a fixed fraction of charges.
type DemoDecider struct {
	SuccessRate float64
}

func NewDemoDecider() *DemoDecider {
	return &DemoDecider{SuccessRate: 0.9}
}

func (d *DemoDecider) Decide(ctx context.Context, req ChargeRequest) domain.PaymentStatus {
	if rand.Float64() < d.SuccessRate {
		return domain.PaymentSuccess
	}
	return domain.PaymentFailed
}

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newReference builds the audit reference: "REF" + 10 alphanumerics.
func newReference() string {
	b := make([]byte, 10)
	for i := range b {
		b[i] = referenceCharset[rand.IntN(len(referenceCharset))]
	}
	return "REF" + string(b)
}
