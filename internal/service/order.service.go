// Package service holds the order-placement saga: validate against the live
// catalog, price, persist, charge, confirm, then kick off fulfillment. The
// steps commit sequentially; there is no distributed transaction and no
// compensation once an order is confirmed.
package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swifteats/internal/catalog"
	"swifteats/internal/correlation"
	"swifteats/internal/domain"
	"swifteats/internal/payments"
	"swifteats/internal/pricing"
	"swifteats/internal/repo"
)

type PlaceOrderInput struct {
	CustomerID     int64
	RestaurantID   int64
	AddressID      int64
	City           string
	Lines          []pricing.Line
	PaymentMethod  domain.PaymentMethod
	IdempotencyKey string
}

// OrderSnapshot is the saga's result: the order's final state for this
// request.
type OrderSnapshot struct {
	OrderID       int64
	OrderStatus   domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	OrderTotal    decimal.Decimal
}

// Charger is the payment engine seam.
type Charger interface {
	Charge(ctx context.Context, key string, req payments.ChargeRequest) (payments.ChargeResult, error)
}

// Notifier is the fulfillment seam; implementations must never block.
type Notifier interface {
	OrderConfirmed(orderID int64, city, correlationID string)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*OrderSnapshot, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error)
}

type orderService struct {
	orders   repo.OrderRepo
	catalog  catalog.Client
	charger  Charger
	notifier Notifier
	log      *zap.Logger
}

func NewOrderService(
	orders repo.OrderRepo,
	cat catalog.Client,
	charger Charger,
	notifier Notifier,
	log *zap.Logger,
) OrderService {
	return &orderService{
		orders:   orders,
		catalog:  cat,
		charger:  charger,
		notifier: notifier,
		log:      log,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*OrderSnapshot, error) {
	// Step 1: everything that can reject the request runs before any row is
	// written.
	if !in.PaymentMethod.Valid() {
		return nil, domain.Validationf("Unknown payment method %q", in.PaymentMethod)
	}
	if !in.PaymentMethod.IsCOD() && in.IdempotencyKey == "" {
		return nil, domain.ErrIdempotencyKeyRequired
	}
	if err := pricing.ValidateLines(in.Lines); err != nil {
		return nil, err
	}

	restaurant, err := s.catalog.Restaurant(ctx, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	if err := pricing.ValidateRestaurant(restaurant, in.City); err != nil {
		return nil, err
	}
	menu, err := s.catalog.Menu(ctx, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.Price(menu, in.Lines)
	if err != nil {
		return nil, err
	}

	// Step 2: durable order + items before any payment attempt, so a
	// successful charge always has an order to attach to.
	order := &domain.Order{
		CustomerID:     in.CustomerID,
		RestaurantID:   in.RestaurantID,
		AddressID:      in.AddressID,
		OrderStatus:    domain.OrderPending,
		PaymentStatus:  domain.PaymentInit,
		OrderTotal:     quote.Total,
		RestaurantName: restaurant.Name,
		AddressCity:    in.City,
		Items:          quote.Items,
	}
	if err := s.orders.CreateOrderWithItems(ctx, order); err != nil {
		return nil, err
	}

	log := s.log.With(
		zap.Int64("order_id", order.OrderID),
		zap.String("correlation_id", correlation.FromContext(ctx)))

	// Step 3: COD confirms without touching the payment engine.
	if in.PaymentMethod.IsCOD() {
		return s.confirm(ctx, log, order, domain.PaymentPending, in.City)
	}

	// Step 4: the charge leg. Only this leg is idempotent by key; replaying
	// the whole placement would create a second order.
	result, err := s.charger.Charge(ctx, in.IdempotencyKey, payments.ChargeRequest{
		OrderID: order.OrderID,
		Amount:  quote.Total,
		Method:  in.PaymentMethod,
	})
	if err != nil {
		var declined *domain.PaymentDeclinedError
		switch {
		case errors.As(err, &declined):
			if uerr := s.orders.SetPaymentStatus(ctx, order.OrderID, domain.PaymentFailed); uerr != nil {
				log.Error("mark payment failed", zap.Error(uerr))
			}
			log.Info("payment declined")
			return nil, err
		default:
			// Transport failure or unknown: outcome indeterminate, treat as
			// failed.
			if uerr := s.orders.SetPaymentStatus(ctx, order.OrderID, domain.PaymentFailed); uerr != nil {
				log.Error("mark payment failed", zap.Error(uerr))
			}
			var upstream *domain.UpstreamError
			if errors.As(err, &upstream) {
				return nil, err
			}
			return nil, &domain.UpstreamError{Service: "payment", Err: err}
		}
	}

	log.Info("payment charged",
		zap.Int64("payment_id", result.PaymentID),
		zap.String("reference", result.Reference))
	return s.confirm(ctx, log, order, result.Status, in.City)
}

// confirm commits the terminal (CONFIRMED, payment) pair and hands the order
// to fulfillment. Fulfillment runs off the request path and can never undo
// the confirmation.
func (s *orderService) confirm(ctx context.Context, log *zap.Logger, order *domain.Order, payment domain.PaymentStatus, city string) (*OrderSnapshot, error) {
	if err := s.orders.Confirm(ctx, order.OrderID, payment); err != nil {
		return nil, err
	}
	order.OrderStatus = domain.OrderConfirmed
	order.PaymentStatus = payment

	log.Info("order confirmed", zap.String("payment_status", string(payment)))
	s.notifier.OrderConfirmed(order.OrderID, city, correlation.FromContext(ctx))

	return &OrderSnapshot{
		OrderID:       order.OrderID,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		OrderTotal:    order.OrderTotal,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error) {
	return s.orders.ListPage(ctx, page, pageSize)
}
