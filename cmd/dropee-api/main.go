// README: Entry point; loads config, wires services and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dropee/internal/config"
	httptransport "dropee/internal/http"
	"dropee/internal/infra"
	"dropee/internal/maps"
	"dropee/internal/modules/delivery"
	"dropee/internal/modules/location"
	"dropee/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer dbPool.Close()

	if cfg.DB.Migrate {
		dir, err := infra.MigrationsDir()
		if err != nil {
			logger.Fatal("locate migrations", zap.Error(err))
		}
		if err := infra.Migrate(ctx, dbPool, dir); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer func() { _ = redisClient.Close() }()

	pricingStore := pricing.NewStore(dbPool)
	pricingCache := pricing.NewRedisCache(redisClient, pricingStore, cfg.Pricing.RedisTTL)
	pricingResolver := pricing.NewResolver(pricingCache, pricing.DefaultConfig(), pricing.ResolverOptions{
		LookupTimeout: cfg.Pricing.LookupTimeout,
		CacheTTL:      cfg.Pricing.CacheTTL,
	}, logger.Named("pricing"))
	pricingSvc := pricing.NewService(pricingResolver)

	var routes location.RouteProvider
	if cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps client", zap.Error(err))
		}
		routes = rs
	}
	locationSvc := location.NewService(routes, logger.Named("location"))

	deliveryStore := delivery.NewStore(dbPool)
	deliverySvc := delivery.NewService(deliveryStore, pricingSvc, locationSvc, logger.Named("delivery"))

	gin.SetMode(gin.ReleaseMode)
	handler := httptransport.NewServer(httptransport.ServerDeps{
		Pricing:        pricingSvc,
		Delivery:       deliverySvc,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger.Named("http"),
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("dropee api listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}
