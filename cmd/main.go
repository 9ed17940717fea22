package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/logger"
	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/memory"
	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/postgres"
	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/rabbitmq"
	"github.com/armelle-pouzioux/GLesCrocs/internal/app/order"
	"github.com/armelle-pouzioux/GLesCrocs/internal/app/queue"
	"github.com/armelle-pouzioux/GLesCrocs/internal/clock"
	"github.com/armelle-pouzioux/GLesCrocs/internal/config"
	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
	"github.com/armelle-pouzioux/GLesCrocs/migrations"

	amqpAdapter "github.com/armelle-pouzioux/GLesCrocs/internal/adapter/amqp"
	httpAdapter "github.com/armelle-pouzioux/GLesCrocs/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "api-server", "Service mode: api-server, notification-relay")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	store := flag.String("store", "postgres", "Store backend: postgres, memory (memory is for local development)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to resolve timezone: %v", err)
	}

	lgr := logger.New(*mode)
	ctx := context.Background()

	switch *mode {
	case "api-server":
		runAPIServer(ctx, cfg, lgr, clock.NewSystem(loc), *store)
	case "notification-relay":
		runNotificationRelay(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runAPIServer(ctx context.Context, cfg *config.Config, lgr logger.Logger, clk clock.Clock, store string) {
	var (
		menus  interfaces.MenuRepository
		orders interfaces.OrderRepository
		events interfaces.EventPublisher
	)

	switch store {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pool.Close()

		if err := migrations.Apply(ctx, pool); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})

		menus = postgres.NewMenuRepository(pool)
		orders = postgres.NewOrderRepository(pool)

		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer mqConn.Close()

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})

		events = rabbitmq.NewPublisher(mqConn)

	case "memory":
		memStore := memory.NewStore()
		seedDemoMenu(memStore, clk)
		menus = memStore
		orders = memStore
		events = logEventPublisher{logger: lgr}

		lgr.Info("memory_store", "Using in-memory store with a demo menu", "startup", nil)

	default:
		log.Fatalf("Invalid store: %s", store)
	}

	orderService := order.NewService(menus, orders, events, clk, lgr)
	queueService := queue.NewService(orders, clk)

	orderHandler := httpAdapter.NewOrderHandler(orderService, queueService, lgr, cfg.RequestTimeout())

	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpAdapter.HealthHandler)
	mux.HandleFunc("/api/orders", orderHandler.HandleOrders)
	mux.HandleFunc("/api/orders/", orderHandler.HandleOrders)

	handler := httpAdapter.CORSMiddleware(cfg.HTTP.CORSOrigins)(mux)
	handler = httpAdapter.LoggingMiddleware(lgr)(handler)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("API server started on port %d", cfg.HTTP.Port), "startup", map[string]interface{}{
		"port":  cfg.HTTP.Port,
		"store": store,
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down API server", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runNotificationRelay(ctx context.Context, cfg *config.Config, lgr logger.Logger) {
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, lgr)
	relay := amqpAdapter.NewRelayHandler(lgr)

	lgr.Info("service_started", "Notification relay started", "startup", nil)

	go func() {
		if err := consumer.ConsumeEvents(ctx, relay.HandleEvent); err != nil {
			lgr.Error("consumer_error", "Error consuming queue events", "runtime", nil, err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down notification relay", "shutdown", nil)
}

// seedDemoMenu provisions a small card for today so the memory backend is
// usable out of the box.
func seedDemoMenu(store *memory.Store, clk clock.Clock) {
	menu := store.AddMenu(domain.ServiceDateOf(clk.Now()), true)
	store.AddItem(menu.ID, "Croque Monsieur", 850, 300, true)
	store.AddItem(menu.ID, "Salade du Chef", 650, 120, true)
	store.AddItem(menu.ID, "Tarte du Jour", 450, 60, true)
}

// logEventPublisher replaces the broker when running on the memory store.
type logEventPublisher struct {
	logger logger.Logger
}

func (p logEventPublisher) QueueChanged(ctx context.Context) error {
	p.logger.Debug("queue_changed", "Queue changed", "", nil)
	return nil
}

func (p logEventPublisher) OrderReady(ctx context.Context, orderID int64, ticketNumber int) error {
	p.logger.Debug("order_ready", "Order ready", "", map[string]interface{}{
		"order_id": orderID,
		"ticket":   ticketNumber,
	})
	return nil
}
