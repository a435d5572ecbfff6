package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"swifteats/internal/domain"
	"swifteats/internal/pricing"
	"swifteats/internal/service"
)

const idempotencyHeader = "Idempotency-Key"

func init() {
	// order_total and amount go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type orderHandler struct {
	svc service.OrderService
}

type lineIn struct {
	ItemID   int64 `json:"item_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required"`
}

type placeOrderRequest struct {
	CustomerID    int64    `json:"customer_id" binding:"required"`
	RestaurantID  int64    `json:"restaurant_id" binding:"required"`
	AddressID     int64    `json:"address_id" binding:"required"`
	City          string   `json:"city" binding:"required"`
	Lines         []lineIn `json:"lines" binding:"required"`
	PaymentMethod string   `json:"payment_method" binding:"required"`
}

type orderResponse struct {
	OrderID       int64           `json:"order_id"`
	OrderStatus   string          `json:"order_status"`
	PaymentStatus string          `json:"payment_status"`
	OrderTotal    decimal.Decimal `json:"order_total"`
}

func (h *orderHandler) place(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	lines := make([]pricing.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, pricing.Line{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	snapshot, err := h.svc.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		CustomerID:     req.CustomerID,
		RestaurantID:   req.RestaurantID,
		AddressID:      req.AddressID,
		City:           req.City,
		Lines:          lines,
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		IdempotencyKey: c.GetHeader(idempotencyHeader),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, orderResponse{
		OrderID:       snapshot.OrderID,
		OrderStatus:   string(snapshot.OrderStatus),
		PaymentStatus: string(snapshot.PaymentStatus),
		OrderTotal:    snapshot.OrderTotal,
	})
}

func (h *orderHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid order id"})
		return
	}
	order, err := h.svc.GetOrder(c.Request.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orderResponse{
		OrderID:       order.OrderID,
		OrderStatus:   string(order.OrderStatus),
		PaymentStatus: string(order.PaymentStatus),
		OrderTotal:    order.OrderTotal,
	})
}

func (h *orderHandler) list(c *gin.Context) {
	page, err := intQuery(c, "page", 1, 1, 1<<30)
	if err != nil {
		writeError(c, err)
		return
	}
	pageSize, err := intQuery(c, "page_size", 20, 1, 100)
	if err != nil {
		writeError(c, err)
		return
	}

	orders, total, err := h.svc.ListOrders(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	items := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, orderResponse{
			OrderID:       o.OrderID,
			OrderStatus:   string(o.OrderStatus),
			PaymentStatus: string(o.PaymentStatus),
			OrderTotal:    o.OrderTotal,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// intQuery parses a bounded integer query parameter; absent means default,
// anything unparsable or out of range is rejected rather than masked.
func intQuery(c *gin.Context, name string, def, min, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, domain.Validationf("%s must be an integer in %d..%d", name, min, max)
	}
	return n, nil
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	var upstream *domain.UpstreamError
	var declined *domain.PaymentDeclinedError
	switch {
	case errors.Is(err, domain.ErrIdempotencyKeyRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": validation.Detail})
	case errors.As(err, &declined):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Payment failed"})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, gin.H{"detail": upstream.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
