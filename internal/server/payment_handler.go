package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"swifteats/internal/domain"
	"swifteats/internal/payments"
	"swifteats/internal/repo"
)

type paymentHandler struct {
	engine *payments.Engine
	store  repo.PaymentRepo
}

type chargeRequest struct {
	OrderID int64           `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Method  string          `json:"method" binding:"required"`
}

func (h *paymentHandler) charge(c *gin.Context) {
	key := c.GetHeader(idempotencyHeader)
	if key == "" {
		// Rejected before any charge logic runs.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": domain.ErrIdempotencyKeyRequired.Error()})
		return
	}

	var req chargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	method := domain.PaymentMethod(req.Method)
	if !method.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unknown payment method"})
		return
	}

	result, err := h.engine.Charge(c.Request.Context(), key, payments.ChargeRequest{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Method:  method,
	})
	if err != nil {
		// A declined charge still persisted its Payment row; 400 after the
		// fact, same body on every replay of the pair.
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// list returns every attempted charge for an order, failed ones included.
func (h *paymentHandler) list(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Query("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "order_id query parameter required"})
		return
	}
	payments, err := h.store.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	items := make([]gin.H, 0, len(payments))
	for _, p := range payments {
		items = append(items, gin.H{
			"payment_id": p.PaymentID,
			"order_id":   p.OrderID,
			"amount":     p.Amount,
			"method":     string(p.Method),
			"status":     string(p.Status),
			"reference":  p.Reference,
			"created_at": p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *paymentHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid payment id"})
		return
	}
	payment, err := h.store.FindByID(c.Request.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Payment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment_id": payment.PaymentID,
		"order_id":   payment.OrderID,
		"amount":     payment.Amount,
		"method":     string(payment.Method),
		"status":     string(payment.Status),
		"reference":  payment.Reference,
		"created_at": payment.CreatedAt,
	})
}
