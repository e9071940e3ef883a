// Package api boots the order service HTTP API and its dispatch consumer.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/daviag/bookshop-order-service/internal/clients/http/catalog"
	ordershttp "github.com/daviag/bookshop-order-service/internal/domains/orders/adapters/http"
	orderskafka "github.com/daviag/bookshop-order-service/internal/domains/orders/adapters/kafka"
	ordersmemory "github.com/daviag/bookshop-order-service/internal/domains/orders/adapters/memory"
	ordersobs "github.com/daviag/bookshop-order-service/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/daviag/bookshop-order-service/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/daviag/bookshop-order-service/internal/domains/orders/application"
	ordersports "github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
	"github.com/daviag/bookshop-order-service/internal/platform/migrations"
	platformobservability "github.com/daviag/bookshop-order-service/internal/platform/observability"
	platformpostgres "github.com/daviag/bookshop-order-service/internal/platform/postgres"
	"github.com/daviag/bookshop-order-service/internal/shared/auth"
)

// Run boots the order service with observability, repositories, messaging,
// and the HTTP surface wired. It blocks until ctx is canceled or the server
// fails.
func Run(ctx context.Context) error {
	const serviceName = "order-service"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	bookClient, err := catalog.NewClient(cfg.CatalogServiceURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog client: %w", err)
	}

	orderRepo, cleanupRepo := buildOrderRepository(ctx, cfg, logger)
	defer cleanupRepo()

	publisher := orderskafka.NewPublisher(cfg.KafkaBrokers, cfg.OrderAcceptedTopic)
	defer publisher.Close()

	coreService := ordersapp.NewService(orderRepo, bookClient, publisher, logger)
	orderService := ordersobs.New(
		coreService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	consumer := orderskafka.NewDispatchConsumer(
		cfg.KafkaBrokers, cfg.OrderDispatchedTopic, cfg.KafkaGroupID, orderService, logger)
	defer consumer.Close()
	go consumer.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	guard := auth.Middleware(auth.Config{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer})
	orderAPI := ordershttp.NewOrderAPI(orderService, logger)
	orderAPI.Register(router, guard)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("order service listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("order service shutdown failed", slog.String("error", err.Error()))
			return err
		}
		logger.Info("order service stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("order service exited", slog.String("error", err.Error()))
			return err
		}
		return nil
	}
}

func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.Repository, func()) {
	db, cleanup := platformpostgres.ConnectOrNil(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return ordersmemory.NewRepository(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate orders schema, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return ordersmemory.NewRepository(), func() {}
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db), cleanup
}
