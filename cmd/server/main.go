package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cardswap.backend/internal/app"
	"cardswap.backend/internal/config"
	"cardswap.backend/internal/infrastructure/datasources/postgres"
	"cardswap.backend/internal/infrastructure/jobs"
	"cardswap.backend/internal/infrastructure/metrics"
	"cardswap.backend/internal/infrastructure/notify"
	"cardswap.backend/internal/interfaces/http/handlers"
	"cardswap.backend/internal/interfaces/http/middleware"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/jwt"
	"cardswap.backend/pkg/logger"
	"cardswap.backend/pkg/redis"
)

// shutdownTimeout bounds in-flight request draining.
const shutdownTimeout = 10 * time.Second

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = postgres.NewConnection
	migrateDB  = postgres.Migrate
	runServer  = func(ctx context.Context, r *gin.Engine, port string) error {
		srv := &http.Server{Addr: ":" + port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	envErr := loadDotenv()

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	bootCtx := context.Background()
	if envErr != nil {
		logger.Info(bootCtx, "No .env file found, using environment variables")
	}
	logger.Info(bootCtx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(bootCtx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(bootCtx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB(db)
	if cfg.Database.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return err
		}
	}
	logger.Info(bootCtx, "Connected to PostgreSQL via GORM")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	notifier := notify.NewMulti(m,
		notify.Sink{Name: "redis", Notifier: notify.NewRedisNotifier(cfg.Redis.EventChannel)},
		notify.Sink{Name: "metrics", Notifier: notify.NewMetricsNotifier(m)},
	)
	core, err := app.Build(db, cfg, notifier, clock.System{})
	if err != nil {
		return err
	}
	defer core.Dispatcher.Wait()

	issuer := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Jobs.Enabled {
		scheduler, err := newScheduler(cfg.Jobs, core, m)
		if err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(m))

	registerHealthRoute(r)
	registerMetricsRoute(r, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	registerAPIV1Routes(r, routeDeps{
		tradeHandler:   handlers.NewTradeHandler(core.Trades),
		saleHandler:    handlers.NewSaleHandler(core.Sales),
		listingHandler: handlers.NewListingHandler(core.Listings, core.Limits),
		adminHandler:   handlers.NewAdminHandler(core.Fraud, core.Disputes, core.Admin, core.Settings, core.Sweep),
		authMiddleware: middleware.AuthMiddleware(issuer),
	})

	for _, route := range r.Routes() {
		logger.Debug(bootCtx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	logger.Info(bootCtx, "CardSwap backend starting", zap.String("port", cfg.Server.Port))
	if err := runServer(ctx, r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(bootCtx, "Server stopped")
	return nil
}

func newScheduler(cfg config.JobsConfig, core *app.Container, m *metrics.Metrics) (*jobs.Scheduler, error) {
	s := jobs.NewScheduler()
	if err := s.Register(cfg.SweepSchedule, jobs.NewAutoFinalizeJob(core.Sweep, jobs.RedisLocker{}, cfg.SweepLockTTL, m)); err != nil {
		return nil, err
	}
	if err := s.Register(cfg.FraudScanSchedule, jobs.NewFraudScanJob(core.Fraud, m)); err != nil {
		return nil, err
	}
	if err := s.Register(cfg.CardExpirySchedule, jobs.NewCardExpiryJob(core.Listings, m)); err != nil {
		return nil, err
	}
	return s, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
