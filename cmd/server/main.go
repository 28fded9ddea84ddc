package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldline/config"
	"fieldline/internal/database"
	"fieldline/internal/handlers"
	"fieldline/internal/repository"
	"fieldline/internal/services/checkout"
	"fieldline/internal/services/pricing"
	"fieldline/internal/services/receiving"
	"fieldline/internal/services/visits"
	"fieldline/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	logger := config.NewLogger(cfg.Logger)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	redisClient, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		redisClient = nil
	}

	issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)

	productStore := repository.NewProductStore(db, redisClient)
	discountStore := repository.NewDiscountStore(db, redisClient, logger)
	orderStore := repository.NewOrderStore(db, productStore)
	visitStore := repository.NewVisitStore(db)
	receivingStore := repository.NewReceivingStore(db, productStore)
	userStore := repository.NewUserStore(db)

	evaluator := pricing.NewEvaluator(discountStore, productStore, logger)
	checkoutSvc := checkout.NewService(orderStore, evaluator, logger)
	visitSvc := visits.NewLifecycle(visitStore, logger)
	receivingSvc := receiving.NewTracker(receivingStore, logger)

	deps := routeDeps{
		auth:      handlers.NewAuthHandler(userStore, issuer, logger),
		catalog:   handlers.NewCatalogHandler(productStore, logger),
		orders:    handlers.NewOrderHandler(checkoutSvc, logger),
		discounts: handlers.NewDiscountHandler(evaluator, logger),
		visits:    handlers.NewVisitHandler(visitSvc, logger),
		receiving: handlers.NewReceivingHandler(receivingSvc, logger),
		issuer:    issuer,
	}

	router := setupRouter(deps)

	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
}
