package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/voltahome/internal/auth"
	"github.com/KasumiMercury/voltahome/internal/config"
	"github.com/KasumiMercury/voltahome/internal/handler"
	"github.com/KasumiMercury/voltahome/internal/health"
	"github.com/KasumiMercury/voltahome/internal/infra/mongostore"
	"github.com/KasumiMercury/voltahome/internal/infra/repository"
	"github.com/KasumiMercury/voltahome/internal/infra/sweeprecorder"
	"github.com/KasumiMercury/voltahome/internal/observability/logging"
	"github.com/KasumiMercury/voltahome/internal/observability/metrics"
	"github.com/KasumiMercury/voltahome/internal/observability/middleware"
	"github.com/KasumiMercury/voltahome/internal/service/admin"
	"github.com/KasumiMercury/voltahome/internal/service/analytics"
	"github.com/KasumiMercury/voltahome/internal/service/dedup"
	"github.com/KasumiMercury/voltahome/internal/service/item"
	"github.com/KasumiMercury/voltahome/internal/service/status"
	"github.com/KasumiMercury/voltahome/internal/service/sweep"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("invalid timezone", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	sweepMetrics, err := metrics.NewSweepMetrics()
	if err != nil {
		slog.Error("failed to initialize sweep metrics", slog.String("error", err.Error()))
		return 1
	}

	analyticsMetrics, err := metrics.NewAnalyticsMetrics()
	if err != nil {
		slog.Error("failed to initialize analytics metrics", slog.String("error", err.Error()))
		return 1
	}

	// Sweep run results go to InfluxDB locally and BigQuery under the gcloud tag.
	recorderCfg := sweeprecorder.LoadConfig()
	resultRecorder, err := sweeprecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize sweep result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := resultRecorder.Close(); err != nil {
			slog.Warn("failed to close sweep result recorder", slog.String("error", err.Error()))
		}
	}()

	lifetimeCatalog, err := initCatalog(cfg.CatalogFile)
	if err != nil {
		slog.Error("failed to load lifetime catalog", slog.String("error", err.Error()))
		return 1
	}

	redisClient := redis.NewClient(cfg.Redis.Options())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	mongoClient, err := mongostore.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		slog.Error("failed to connect mongodb",
			slog.String("event", "mongo.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			slog.Warn("failed to disconnect mongodb", slog.String("error", err.Error()))
		}
	}()

	db := mongoClient.Database(cfg.Mongo.Database)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		slog.Error("failed to ensure mongodb indexes", slog.String("error", err.Error()))
		return 1
	}

	slog.Info("mongodb connected",
		slog.String("database", cfg.Mongo.Database),
	)

	notificationRepo, closeNotificationStore, notificationProbe, err := initNotificationStore(ctx, cfg.Notification, db)
	if err != nil {
		slog.Error("failed to initialize notification store", slog.String("error", err.Error()))
		return 1
	}
	if closeNotificationStore != nil {
		defer func() {
			if err := closeNotificationStore(); err != nil {
				slog.Warn("failed to close notification store", slog.String("error", err.Error()))
			}
		}()
	}

	mail, err := initMailer(cfg.Mail)
	if err != nil {
		slog.Error("failed to initialize mailer", slog.String("error", err.Error()))
		return 1
	}

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		slog.Error("failed to initialize token verifier", slog.String("error", err.Error()))
		return 1
	}

	itemRepo := mongostore.NewItemRepository(db)
	userRepo := mongostore.NewUserRepository(db)
	detectionRepo := mongostore.NewDetectionRepository(db)

	calculator := status.NewCalculator(lifetimeCatalog, loc, nil)
	dedupEngine := dedup.NewEngine(
		notificationRepo,
		repository.NewSendGuard(redisClient),
		cfg.Notification.Cooldown,
		nil,
	)

	sweepService := sweep.NewService(
		itemRepo,
		userRepo,
		mail,
		dedupEngine,
		calculator,
		repository.NewSweepLock(redisClient),
		resultRecorder,
		sweepMetrics,
		sweep.Config{
			ClassifyWorkers: cfg.Sweep.ClassifyWorkers,
			DispatchWorkers: cfg.Sweep.DispatchWorkers,
			SendTimeout:     cfg.Sweep.SendTimeout,
			LockTTL:         cfg.Sweep.LockTTL,
			DashboardURL:    cfg.Sweep.DashboardURL,
		},
	)
	itemService := item.NewService(itemRepo, lifetimeCatalog, calculator)
	analyticsService := analytics.NewService(detectionRepo, analyticsMetrics, analytics.Config{
		QueueSize:    cfg.Analytics.QueueSize,
		Workers:      cfg.Analytics.Workers,
		WriteTimeout: cfg.Analytics.WriteTimeout,
	})
	defer func() {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer drainCancel()
		if err := analyticsService.Shutdown(drainCtx); err != nil {
			slog.Warn("analytics queue not fully drained", slog.String("error", err.Error()))
		}
	}()
	adminChecker := admin.NewChecker(userRepo, admin.ParseAllowList(cfg.Auth.AdminAllowList))

	itemHandler := handler.NewItemHandler(itemService, calculator)
	sweepHandler := handler.NewSweepHandler(sweepService, cfg.Sweep.TriggerToken)
	catalogHandler := handler.NewCatalogHandler(lifetimeCatalog)
	adminHandler := handler.NewAdminHandler(adminChecker)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      logging.Module("api"),
		TracerName:  "github.com/KasumiMercury/voltahome/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	probes := map[string]health.Probe{
		"redis":   health.RedisProbe(redisClient),
		"mongodb": health.MongoProbe(mongoClient),
	}
	if notificationProbe != nil {
		probes["postgres"] = notificationProbe
	}
	healthChecker := health.NewChecker(Version, probes)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	// API routes
	v1 := r.Group("/api/v1", handler.Authenticate(verifier))
	{
		v1.GET("/notifications/sweep", sweepHandler.HandleSweep)
		v1.POST("/notifications/sweep", sweepHandler.HandleSweep)

		v1.GET("/catalog", catalogHandler.HandleList)
		v1.GET("/auth/check-admin", adminHandler.HandleCheckAdmin)

		items := v1.Group("/items", handler.RequireSession())
		items.GET("", itemHandler.HandleList)
		items.POST("", itemHandler.HandleCreate)
		items.PATCH("/:id", itemHandler.HandleUpdate)
		items.DELETE("/:id", itemHandler.HandleDelete)

		v1.POST("/analytics/detection", analyticsHandler.HandleIngest)
		v1.GET("/analytics/detection",
			handler.RequireSession(),
			handler.RequireAdmin(adminChecker),
			analyticsHandler.HandleSummary,
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("timezone", loc.String()),
			slog.Duration("notification_cooldown", cfg.Notification.Cooldown),
			slog.String("notification_store", cfg.Notification.Store),
			slog.String("mail_provider", cfg.Mail.Provider),
		)
		serverErr <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
