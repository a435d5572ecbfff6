package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type PaymentMethod string

const (
	MethodCard   PaymentMethod = "CARD"
	MethodUPI    PaymentMethod = "UPI"
	MethodWallet PaymentMethod = "WALLET"
	MethodCOD    PaymentMethod = "COD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodWallet, MethodCOD:
		return true
	}
	return false
}

func (m PaymentMethod) IsCOD() bool { return m == MethodCOD }

// Order carries denormalized RestaurantName/AddressCity snapshots taken at
// creation time; they are never refreshed from the catalog afterwards.
type Order struct {
	OrderID        int64
	CustomerID     int64
	RestaurantID   int64
	AddressID      int64
	OrderStatus    OrderStatus
	PaymentStatus  PaymentStatus
	OrderTotal     decimal.Decimal
	RestaurantName string
	AddressCity    string
	CreatedAt      time.Time

	Items []OrderItem
}

// OrderItem price is the menu price at order time, immutable once written.
type OrderItem struct {
	ID       int64
	OrderID  int64
	ItemID   int64
	Quantity int
	Price    decimal.Decimal
}
