package main

import (
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/orderdesk/order-service/internal/config"
	"github.com/orderdesk/order-service/internal/gateway"
	"github.com/orderdesk/order-service/internal/handlers"
	"github.com/orderdesk/order-service/internal/messaging"
	"github.com/orderdesk/order-service/internal/repository"
	"github.com/orderdesk/order-service/internal/service"
)

func main() {
	log := newLogger()
	cfg := config.Load()

	log.Infof("%s starting on port %s", cfg.AppName, cfg.Port)

	db, err := initDatabase(cfg.Database, log)
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	defer db.Close()

	if err := repository.EnsureSchema(db, "migrations/schema.sql"); err != nil {
		log.Fatalf("schema setup error: %v", err)
	}

	// Event publishing is best-effort; a missing broker degrades to
	// log-only operation instead of blocking startup.
	var publisher service.EventPublisher
	rabbitClient := messaging.NewRabbitMQClient(messaging.NewRabbitMQConfig(), log)
	if err := rabbitClient.Connect(); err != nil {
		log.Warnf("RabbitMQ unavailable, order events disabled: %v", err)
	} else {
		defer rabbitClient.Close()
		publisher = messaging.NewPublisher(rabbitClient)
	}

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	shipmentClient := gateway.NewClient(cfg.Shipment, log)

	orderService := service.NewOrderService(orderRepo, productRepo, shipmentClient, publisher, log, cfg.OrderCodeRetries)
	productService := service.NewProductService(productRepo, log)

	orderHandler := handlers.NewOrderHandler(orderService)
	productHandler := handlers.NewProductHandler(productService)

	app := setupFiberApp(cfg, log)
	setupRoutes(app, orderHandler, productHandler)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown error: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server start error: %v", err)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
	}
	log.Out = os.Stdout
	return log
}

func initDatabase(cfg config.DatabaseConfig, log *logrus.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	log.Infof("database connection established: %s", cfg.Name)
	return db, nil
}

func setupFiberApp(cfg config.Config, log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			log.Errorf("unhandled error: %v", err)
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": message,
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	return app
}

func setupRoutes(app *fiber.App, orderHandler *handlers.OrderHandler, productHandler *handlers.ProductHandler) {
	app.Get("/health", orderHandler.HealthCheck)

	orders := app.Group("/orders")
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/by-code/:orderCode", orderHandler.GetOrderByCode)
	orders.Patch("/by-code/:orderCode", orderHandler.UpdateOrder)
	orders.Delete("/by-code/:orderCode", orderHandler.CancelOrder)
	orders.Post("/by-code/:orderCode/status-update", orderHandler.ExternalStatusUpdate)
	orders.Get("/:id", orderHandler.GetOrderByID)

	products := app.Group("/products")
	products.Post("/", productHandler.CreateProduct)
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)
	products.Patch("/:id", productHandler.UpdateProduct)
	products.Delete("/:id", productHandler.DeleteProduct)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "route not found",
		})
	})
}
