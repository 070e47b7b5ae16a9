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

	"github.com/nanaosei-dev/chatvendor/internal/adapter/amqp"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/directory"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/logger"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/memstore"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/openai"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/postgres"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/rabbitmq"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/redisstore"
	"github.com/nanaosei-dev/chatvendor/internal/adapter/whatsapp"
	"github.com/nanaosei-dev/chatvendor/internal/app/dialogue"
	"github.com/nanaosei-dev/chatvendor/internal/app/notify"
	"github.com/nanaosei-dev/chatvendor/internal/app/ordering"
	"github.com/nanaosei-dev/chatvendor/internal/app/router"
	"github.com/nanaosei-dev/chatvendor/internal/config"
	"github.com/nanaosei-dev/chatvendor/internal/interfaces"

	httpAdapter "github.com/nanaosei-dev/chatvendor/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "", "Service mode: webhook, dashboard-subscriber")
	port := flag.Int("port", 3000, "HTTP port")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	lgr := logger.New(*mode)

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	switch *mode {
	case "webhook":
		runWebhookService(ctx, cfg, mqConn, lgr, *port)

	case "dashboard-subscriber":
		runDashboardSubscriber(ctx, mqConn, lgr)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

func runWebhookService(ctx context.Context, cfg *config.Config, mqConn rabbitmq.Connection, lgr logger.Logger, port int) {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	// Repositories
	merchantRepo := postgres.NewMerchantRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Session store: redis when configured, in-process fallback with
	// identical TTL/trim semantics otherwise.
	var sessions interfaces.SessionStore
	if cfg.Redis.Addr != "" {
		redisClient, err := redisstore.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		sessions = redisstore.New(redisClient)
		lgr.Info("redis_connected", "Using redis session store", "startup", map[string]interface{}{
			"addr": cfg.Redis.Addr,
		})
	} else {
		store := memstore.New()
		go store.Sweep(ctx, 10*time.Minute)
		sessions = store
		lgr.Warn("memstore_fallback", "Redis not configured, using in-process session store", "startup", nil)
	}

	// Adapters
	publisher := rabbitmq.NewPublisher(mqConn)
	transport := whatsapp.NewClient(cfg.WhatsApp, cfg.App.PublicBaseURL, lgr)
	pool := openai.NewProviderPool(cfg.AI.Providers)
	model := openai.NewClient(pool, cfg.AI.RequestTimeout.Std(), cfg.AI.Temperature, lgr)
	dir := directory.NewStatic(cfg.App.DirectoryURL)

	// Services
	notifier := notify.NewService(publisher, notificationRepo, transport, cfg.App.OperatorContacts, lgr)
	orderService := ordering.NewService(orderRepo, customerRepo, merchantRepo, publisher, lgr)
	dialogueService := dialogue.NewService(model, sessions, orderService, orderRepo, customerRepo, transport, notifier, lgr)
	routerService := router.NewService(merchantRepo, customerRepo, sessions, dialogueService, transport, dir, notifier, lgr)

	// HTTP surface
	webhookHandler := httpAdapter.NewWebhookHandler(routerService, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", webhookHandler.HandleEvent)

	handler := httpAdapter.LoggingMiddleware(lgr)(mux)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Webhook service started on port %d", port), "startup", map[string]interface{}{
		"port":      port,
		"providers": len(cfg.AI.Providers),
	})

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		lgr.Info("shutdown_initiated", "Shutting down webhook service", "shutdown", nil)

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

func runDashboardSubscriber(ctx context.Context, mqConn rabbitmq.Connection, lgr logger.Logger) {
	consumer := rabbitmq.NewConsumer(mqConn)
	eventHandler := amqp.NewEventHandler(lgr)

	lgr.Info("service_started", "Dashboard subscriber started", "startup", nil)

	go func() {
		if err := consumer.ConsumeAdminEvents(ctx, eventHandler.HandleEvent); err != nil {
			lgr.Error("consumer_error", "Error consuming events", "runtime", nil, err)
		}
	}()

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	<-sigint

	lgr.Info("shutdown_initiated", "Shutting down dashboard subscriber", "shutdown", nil)
}
