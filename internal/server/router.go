package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"swifteats/internal/database"
	"swifteats/internal/payments"
	"swifteats/internal/repo"
	"swifteats/internal/service"
)

// New assembles the gin engine with all middleware and routes.
func New(
	db *sql.DB,
	orderSvc service.OrderService,
	engine *payments.Engine,
	paymentStore repo.PaymentRepo,
	log *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(CorrelationID())
	r.Use(RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		stats := database.Health(c.Request.Context(), db)
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	orders := &orderHandler{svc: orderSvc}
	v1 := r.Group("/v1")
	v1.POST("/orders", orders.place)
	v1.GET("/orders", orders.list)
	v1.GET("/orders/:id", orders.get)

	pay := &paymentHandler{engine: engine, store: paymentStore}
	v1.POST("/payments/charge", pay.charge)
	v1.GET("/payments", pay.list)
	v1.GET("/payments/:id", pay.get)

	return r
}
