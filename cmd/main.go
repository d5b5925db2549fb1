package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	handler "backoffice-service/app/handler/api"
	"backoffice-service/app/middleware"
	"backoffice-service/app/repository/broker"
	"backoffice-service/app/repository/db"
	"backoffice-service/app/usecase"
	"backoffice-service/config"
	"backoffice-service/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	slogfiber "github.com/samber/slog-fiber"
)

func main() {
	// init logger
	logger.InitLogger()

	ctx := context.Background()
	// init config
	cfg, err := config.InitConfig(ctx)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		return
	}

	// init database
	dbConn, err := db.NewPostgres(cfg.Db)
	if err != nil {
		slog.Error("DB connection failed", "error", err)
		return
	}
	defer dbConn.Close()

	if err := db.EnsureSchema(ctx, dbConn); err != nil {
		slog.Error("schema bootstrap failed", "error", err)
		return
	}

	// Connect to NATS server
	nc, err := nats.Connect(cfg.Nats.Url)
	if err != nil {
		slog.Error("Error connecting to NATS", "error", err)
		return
	}
	defer nc.Drain()

	js, err := jetstream.New(nc)
	if err != nil {
		slog.Error("Error creating JetStream context", "error", err)
		return
	}
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     strings.ToUpper(cfg.Nats.StreamName),
		Subjects: []string{fmt.Sprintf("%s.*", strings.ToLower(cfg.Nats.StreamName))},
		Storage:  jetstream.FileStorage,
	})
	if err != nil && !errors.Is(err, jetstream.ErrStreamNameAlreadyInUse) {
		slog.Error("create event stream failed", "error", err)
		return
	}

	reqValidator := validator.New()

	categoryRepo := db.NewCategoryRepository(dbConn)
	productRepo := db.NewProductRepository(dbConn)
	skuRepo := db.NewSKURepository(dbConn)
	customerRepo := db.NewCustomerRepository(dbConn)
	addressRepo := db.NewAddressRepository(dbConn)
	couponRepo := db.NewCouponRepository(dbConn)
	orderRepo := db.NewOrderRepository(dbConn)
	paymentRepo := db.NewPaymentRepository(dbConn)
	shipmentRepo := db.NewShipmentRepository(dbConn)
	returnRepo := db.NewReturnRepository(dbConn)
	auditRepo := db.NewAuditRepository(dbConn)
	historyRepo := db.NewOrderHistoryRepository(dbConn)

	eventBroker := broker.NewEventBrokerPublisher(js)

	catalogUsecase := usecase.NewCatalogUsecase(categoryRepo, productRepo, skuRepo, auditRepo)
	inventoryUsecase := usecase.NewInventoryUsecase(skuRepo, productRepo, auditRepo, eventBroker, cfg)
	customerUsecase := usecase.NewCustomerUsecase(customerRepo, addressRepo)
	couponUsecase := usecase.NewCouponUsecase(couponRepo, orderRepo, auditRepo, cfg)
	orderUsecase := usecase.NewOrderUsecase(orderRepo, skuRepo, customerRepo, addressRepo,
		couponRepo, historyRepo, auditRepo, eventBroker, cfg)
	paymentUsecase := usecase.NewPaymentUsecase(paymentRepo, orderRepo, historyRepo, auditRepo, eventBroker)
	shipmentUsecase := usecase.NewShipmentUsecase(shipmentRepo, orderRepo, skuRepo, historyRepo, auditRepo, eventBroker)
	returnUsecase := usecase.NewReturnUsecase(returnRepo, orderRepo, skuRepo, paymentRepo, auditRepo, eventBroker, cfg)
	auditUsecase := usecase.NewAuditUsecase(auditRepo)

	handlers := handler.Handlers{
		Inventory: handler.NewInventoryHandler(inventoryUsecase, reqValidator),
		Catalog:   handler.NewCatalogHandler(catalogUsecase, reqValidator),
		Customer:  handler.NewCustomerHandler(customerUsecase, reqValidator),
		Coupon:    handler.NewCouponHandler(couponUsecase, reqValidator),
		Order:     handler.NewOrderHandler(orderUsecase, reqValidator),
		Payment:   handler.NewPaymentHandler(paymentUsecase, reqValidator),
		Shipment:  handler.NewShipmentHandler(shipmentUsecase, reqValidator),
		Return:    handler.NewReturnHandler(returnUsecase, reqValidator),
		Audit:     handler.NewAuditHandler(auditUsecase),
	}

	// Initialize HTTP web framework
	app := fiber.New()
	app.Use(healthcheck.New(healthcheck.Config{
		LivenessProbe: func(c *fiber.Ctx) bool {
			return true
		},
		LivenessEndpoint: "/live",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return dbConn.PingContext(c.Context()) == nil
		},
		ReadinessEndpoint: "/ready",
	}))
	webLogger := slog.New(&logger.RequestIDHandler{Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})})
	app.Use(slogfiber.New(webLogger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(middleware.RequestIDMiddleware())

	handler.SetupRouter(app, handlers, cfg)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Failed to listen", "port", cfg.Port)
			return
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("Gracefully shutdown")
	err = app.Shutdown()
	if err != nil {
		slog.Warn("Unfortunately the shutdown wasn't smooth", "err", err)
	}
}
