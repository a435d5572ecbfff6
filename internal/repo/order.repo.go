package repo

import (
	"context"
	"database/sql"
	"errors"

	"swifteats/internal/domain"
)

type OrderRepo interface {
	// CreateOrderWithItems persists the order and its items in one
	// transaction and fills in OrderID and CreatedAt. Items are only visible
	// once the order commits.
	CreateOrderWithItems(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error)
	SetPaymentStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) error
	// Confirm commits both statuses as a single transition.
	Confirm(ctx context.Context, orderID int64, payment domain.PaymentStatus) error
}

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

func (r *orderRepo) CreateOrderWithItems(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (customer_id, restaurant_id, address_id, order_status, payment_status, order_total, restaurant_name, address_city)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING order_id, created_at`,
		order.CustomerID, order.RestaurantID, order.AddressID,
		order.OrderStatus, order.PaymentStatus, order.OrderTotal,
		order.RestaurantName, order.AddressCity,
	).Scan(&order.OrderID, &order.CreatedAt)
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.OrderID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, item_id, quantity, price)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			item.OrderID, item.ItemID, item.Quantity, item.Price,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *orderRepo) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT order_id, customer_id, restaurant_id, address_id, order_status, payment_status, order_total, restaurant_name, address_city, created_at
		 FROM orders WHERE order_id = $1`, id).Scan(
		&order.OrderID,
		&order.CustomerID,
		&order.RestaurantID,
		&order.AddressID,
		&order.OrderStatus,
		&order.PaymentStatus,
		&order.OrderTotal,
		&order.RestaurantName,
		&order.AddressCity,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, item_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ItemID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return &order, rows.Err()
}

func (r *orderRepo) ListPage(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, customer_id, restaurant_id, address_id, order_status, payment_status, order_total, restaurant_name, address_city, created_at
		 FROM orders ORDER BY order_id DESC OFFSET $1 LIMIT $2`,
		(page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.OrderID,
			&order.CustomerID,
			&order.RestaurantID,
			&order.AddressID,
			&order.OrderStatus,
			&order.PaymentStatus,
			&order.OrderTotal,
			&order.RestaurantName,
			&order.AddressCity,
			&order.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, rows.Err()
}

func (r *orderRepo) SetPaymentStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1 WHERE order_id = $2`, status, orderID)
	return err
}

func (r *orderRepo) Confirm(ctx context.Context, orderID int64, payment domain.PaymentStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET order_status = $1, payment_status = $2 WHERE order_id = $3`,
		domain.OrderConfirmed, payment, orderID)
	return err
}
