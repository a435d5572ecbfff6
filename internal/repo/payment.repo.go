package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"swifteats/internal/domain"
)

const uniqueViolation = "23505"

type PaymentRepo interface {
	// CreateChargeRecord persists the Payment and its IdempotencyRecord as a
	// single transaction. The payment id is assigned before respond is called
	// so the stored body can include it. A unique violation on
	// (key, request_hash) is returned as domain.ErrIdempotencyConflict and
	// nothing is persisted.
	CreateChargeRecord(ctx context.Context, payment *domain.Payment, key, requestHash string, respond func(*domain.Payment) ([]byte, error)) error
	// FindIdempotencyRecord returns (nil, nil) when the pair is unknown.
	FindIdempotencyRecord(ctx context.Context, key, requestHash string) (*domain.IdempotencyRecord, error)
	FindByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error)
}

type paymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) PaymentRepo {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) CreateChargeRecord(ctx context.Context, payment *domain.Payment, key, requestHash string, respond func(*domain.Payment) ([]byte, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO payments (order_id, amount, method, status, reference)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING payment_id, created_at`,
		payment.OrderID, payment.Amount, payment.Method, payment.Status, payment.Reference,
	).Scan(&payment.PaymentID, &payment.CreatedAt)
	if err != nil {
		return err
	}

	body, err := respond(payment)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO idempotency_keys (key, request_hash, response_body) VALUES ($1, $2, $3)`,
		key, requestHash, string(body))
	if err != nil {
		return translateConflict(err)
	}

	return translateConflict(tx.Commit())
}

func (r *paymentRepo) FindIdempotencyRecord(ctx context.Context, key, requestHash string) (*domain.IdempotencyRecord, error) {
	var rec domain.IdempotencyRecord
	var body string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, key, request_hash, response_body, created_at
		 FROM idempotency_keys WHERE key = $1 AND request_hash = $2`,
		key, requestHash).Scan(&rec.ID, &rec.Key, &rec.RequestHash, &body, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.ResponseBody = []byte(body)
	return &rec, nil
}

func (r *paymentRepo) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.QueryRowContext(ctx,
		`SELECT payment_id, order_id, amount, method, status, reference, created_at
		 FROM payments WHERE payment_id = $1`, id).Scan(
		&p.PaymentID,
		&p.OrderID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&p.Reference,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) ListByOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payment_id, order_id, amount, method, status, reference, created_at
		 FROM payments WHERE order_id = $1 ORDER BY payment_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.PaymentID, &p.OrderID, &p.Amount, &p.Method, &p.Status, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// translateConflict maps a Postgres unique violation onto the domain
// sentinel. The conflict can surface on the insert or, under concurrent
// commits, on Commit itself.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrIdempotencyConflict
	}
	return err
}
