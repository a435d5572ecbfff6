// Package payments owns the idempotent charge engine: at most one effective
// charge per (idempotency key, canonical payload hash) pair, under any number
// of client retries and concurrent duplicates.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"swifteats/internal/domain"
	"swifteats/internal/repo"
)

// ChargeResult is what gets stored in the idempotency record and replayed
// verbatim on retries.
type ChargeResult struct {
	PaymentID int64                `json:"payment_id"`
	Status    domain.PaymentStatus `json:"status"`
	Reference string               `json:"reference"`
}

type Engine struct {
	store  repo.PaymentRepo
	decide Decider
	log    *zap.Logger

	// conflict re-read bounds
	readInterval time.Duration
	readRetries  uint64
}

func NewEngine(store repo.PaymentRepo, decide Decider, log *zap.Logger) *Engine {
	return &Engine{
		store:        store,
		decide:       decide,
		log:          log,
		readInterval: 50 * time.Millisecond,
		readRetries:  5,
	}
}

// Charge runs the idempotent charge flow. On a FAILED outcome the Payment row
// is persisted first and the result is returned alongside
// PaymentDeclinedError, so callers must not read "error" as "no row".
func (e *Engine) Charge(ctx context.Context, key string, req ChargeRequest) (ChargeResult, error) {
	if key == "" {
		return ChargeResult{}, domain.ErrIdempotencyKeyRequired
	}

	hash := RequestHash(req)

	// Replay path: the stored response wins even if deciding again today
	// would produce a different outcome.
	rec, err := e.store.FindIdempotencyRecord(ctx, key, hash)
	if err != nil {
		return ChargeResult{}, err
	}
	if rec != nil {
		return e.replay(req.OrderID, rec)
	}

	status := domain.PaymentPending
	if !req.Method.IsCOD() {
		status = e.decide.Decide(ctx, req)
		if status != domain.PaymentSuccess && status != domain.PaymentFailed {
			return ChargeResult{}, fmt.Errorf("decider returned %q for non-COD charge", status)
		}
	}

	payment := &domain.Payment{
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Method:    req.Method,
		Status:    status,
		Reference: newReference(),
	}

	var result ChargeResult
	err = e.store.CreateChargeRecord(ctx, payment, key, hash, func(p *domain.Payment) ([]byte, error) {
		result = ChargeResult{PaymentID: p.PaymentID, Status: p.Status, Reference: p.Reference}
		return json.Marshal(result)
	})
	if errors.Is(err, domain.ErrIdempotencyConflict) {
		// A concurrent duplicate won the insert. Re-read its record, bounded,
		// since the winner may not have committed yet.
		return e.awaitWinner(ctx, req.OrderID, key, hash)
	}
	if err != nil {
		return ChargeResult{}, err
	}

	e.log.Info("charge persisted",
		zap.Int64("order_id", req.OrderID),
		zap.Int64("payment_id", payment.PaymentID),
		zap.String("status", string(status)))

	if status == domain.PaymentFailed {
		return result, &domain.PaymentDeclinedError{OrderID: req.OrderID}
	}
	return result, nil
}

func (e *Engine) replay(orderID int64, rec *domain.IdempotencyRecord) (ChargeResult, error) {
	var result ChargeResult
	if err := json.Unmarshal(rec.ResponseBody, &result); err != nil {
		return ChargeResult{}, fmt.Errorf("decode stored charge response: %w", err)
	}
	if result.Status == domain.PaymentFailed {
		return result, &domain.PaymentDeclinedError{OrderID: orderID}
	}
	return result, nil
}

func (e *Engine) awaitWinner(ctx context.Context, orderID int64, key, hash string) (ChargeResult, error) {
	var rec *domain.IdempotencyRecord
	op := func() error {
		var err error
		rec, err = e.store.FindIdempotencyRecord(ctx, key, hash)
		if err != nil {
			return backoff.Permanent(err)
		}
		if rec == nil {
			return domain.ErrIdempotencyConflict
		}
		return nil
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.readInterval), e.readRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return ChargeResult{}, fmt.Errorf("idempotency conflict: winning record not visible: %w", err)
	}
	return e.replay(orderID, rec)
}
