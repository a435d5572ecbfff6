package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"swifteats/internal/config"
)

// NewPostgres opens a pooled connection to Postgres via the pgx stdlib driver
// and verifies it with a ping.
func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the idempotent schema. The unique constraint on
// (key, request_hash) is what serializes concurrent identical charge
// attempts; everything else is plain table shape.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			order_id        BIGSERIAL PRIMARY KEY,
			customer_id     BIGINT NOT NULL,
			restaurant_id   BIGINT NOT NULL,
			address_id      BIGINT NOT NULL,
			order_status    VARCHAR(40) NOT NULL DEFAULT 'PENDING',
			payment_status  VARCHAR(40) NOT NULL DEFAULT 'INIT',
			order_total     NUMERIC(12,2) NOT NULL DEFAULT 0,
			restaurant_name VARCHAR(120),
			address_city    VARCHAR(80),
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id       BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
			item_id  BIGINT NOT NULL,
			quantity INT NOT NULL,
			price    NUMERIC(12,2) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)`,
		// payments reference orders by value only; no FK across the payment
		// boundary.
		`CREATE TABLE IF NOT EXISTS payments (
			payment_id BIGSERIAL PRIMARY KEY,
			order_id   BIGINT NOT NULL,
			amount     NUMERIC(12,2) NOT NULL,
			method     VARCHAR(20) NOT NULL,
			status     VARCHAR(20) NOT NULL,
			reference  VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id)`,
		`CREATE TABLE IF NOT EXISTS idempotency_keys (
			id            BIGSERIAL PRIMARY KEY,
			key           VARCHAR(64) NOT NULL,
			request_hash  VARCHAR(64) NOT NULL,
			response_body TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT uq_key_hash UNIQUE (key, request_hash)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Health reports connection-pool statistics for the health endpoint.
func Health(ctx context.Context, db *sql.DB) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}
	return stats
}
