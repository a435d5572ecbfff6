package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"swifteats/internal/catalog"
	"swifteats/internal/config"
	"swifteats/internal/database"
	"swifteats/internal/fulfillment"
	"swifteats/internal/logger"
	"swifteats/internal/payments"
	"swifteats/internal/repo"
	"swifteats/internal/server"
	"swifteats/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		zlog.Fatal("migrate schema", zap.Error(err))
	}

	orderRepo := repo.NewOrderRepo(db)
	paymentRepo := repo.NewPaymentRepo(db)

	catalogClient := catalog.NewClient(cfg.Catalog)
	engine := payments.NewEngine(paymentRepo, payments.NewDemoDecider(), zlog)

	fulfillClient := fulfillment.NewClient(cfg.Delivery, cfg.Notification)
	dispatcher := fulfillment.NewDispatcher(fulfillClient, cfg.Dispatcher.Workers, cfg.Dispatcher.QueueSize, zlog)
	defer dispatcher.Close()

	orderSvc := service.NewOrderService(orderRepo, catalogClient, engine, dispatcher, zlog)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.New(db, orderSvc, engine, paymentRepo, zlog),
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}
