package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/clinic-booking/core/internal/app"
	"github.com/clinic-booking/core/internal/cache"
	"github.com/clinic-booking/core/internal/config"
	"github.com/clinic-booking/core/internal/db"
	"github.com/clinic-booking/core/internal/httpapi"
	"github.com/clinic-booking/core/internal/repository"
	"github.com/clinic-booking/core/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Config from .env and the environment.
	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}

	log, err := app.NewLogger(cfg)
	if err != nil {
		panic("build logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("core stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// 2. Database and migrations.
	gormDB, err := db.NewGormDB(&cfg.DBConfig)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := app.Migrate(ctx, gormDB, log); err != nil {
		return err
	}

	// 3. Optional month cache.
	var monthCache cache.MonthCache = cache.NoopMonthCache{}
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		monthCache = cache.NewRedisMonthCache(client, cfg.CacheTTL())
		log.Info("availability cache enabled", zap.String("redis", cfg.RedisAddr))
	}

	// 4. Services.
	store := repository.NewStore(gormDB)
	svc := httpapi.Services{
		Availability: service.NewAvailabilityService(store, monthCache, loc, time.Now, log),
		Blocks:       service.NewBlockService(store, monthCache, log),
		Bookings:     service.NewBookingService(store, monthCache, log),
		Dashboard:    service.NewDashboardService(store, loc, time.Now),
		Catalog:      service.NewCatalogService(store, log),
	}

	// 5. HTTP API.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(svc, httpapi.Options{
		CORSOrigins:       cfg.AllowedOrigins(),
		BookingRatePerMin: cfg.BookingRatePerMin,
		Ping:              sqlDB.Ping,
	}, log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 6. gRPC health and reflection for orchestration health checks.
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("core http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		log.Info("core gRPC health server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// 7. Graceful shutdown on signal or server failure.
	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case serveErr = <-errCh:
		log.Error("server failed", zap.Error(serveErr))
	}

	healthSrv.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	return serveErr
}
