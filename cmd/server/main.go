package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-hub/adapters/event"
	httpAdapter "github.com/khoahotran/portfolio-hub/adapters/http"
	"github.com/khoahotran/portfolio-hub/adapters/media_storage"
	"github.com/khoahotran/portfolio-hub/adapters/persistence"
	authUC "github.com/khoahotran/portfolio-hub/internal/application/usecase/auth"
	mediaUC "github.com/khoahotran/portfolio-hub/internal/application/usecase/media"
	portfolioUC "github.com/khoahotran/portfolio-hub/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-hub/internal/config"
	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-hub/pkg/auth"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
	"github.com/khoahotran/portfolio-hub/pkg/tracing"
)

const serviceName = "portfolio-hub"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: cannot load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start Portfolio Hub API Server...", zap.String("backend", cfg.Storage.Backend))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Persistence
	gateway, closeGateway, err := newGateway(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot init persistence gateway", err)
	}
	defer closeGateway()

	instanceID := newInstanceID()

	// Change notification
	var notifier portfolio.ChangeNotifier = portfolio.NopNotifier{}
	var kafkaClient *event.KafkaProducerClient
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err = event.NewKafkaProducerClient(cfg, instanceID, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		notifier = kafkaClient
	} else {
		appLogger.Warn("Kafka brokers not configured, change notification disabled")
	}

	// Store
	store := portfolioUC.NewStore(gateway, notifier, appLogger)
	if err := store.Initialize(ctx); err != nil {
		appLogger.Error("Portfolio loaded with errors, serving what is available", err)
	}

	if kafkaClient != nil {
		listener := event.NewChangeListener(cfg, instanceID, store, appLogger)
		defer listener.Close()
		go listener.Run(ctx)
	}

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)

	handlers := httpAdapter.Handlers{
		Auth:      httpAdapter.NewAuthHandler(authUC.NewLoginUseCase(cfg.Auth.AdminPasswordHash, jwtSvc, appLogger), appLogger),
		Portfolio: httpAdapter.NewPortfolioHandler(store, appLogger),
		Feed:      httpAdapter.NewFeedHandler(portfolioUC.NewFeedUseCase(store, cfg.App.PublicURL, appLogger), appLogger),
	}
	if cfg.Cloudinary.CloudName != "" {
		uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize uploader", err)
		}
		handlers.Upload = httpAdapter.NewUploadHandler(mediaUC.NewUploadImageUseCase(uploader, cfg.Cloudinary.Folder, appLogger), appLogger)
	} else {
		appLogger.Warn("Cloudinary not configured, image uploads disabled")
	}

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	httpAdapter.RegisterRoutes(router, handlers, jwtSvc, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port), zap.String("instance_id", instanceID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}

func newGateway(cfg config.Config, log logger.Logger) (portfolio.Gateway, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres, "":
		dbPool, err := persistence.NewPostgresPool(cfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot connect Postgres: %w", err)
		}
		return persistence.NewPostgresGateway(dbPool, log), dbPool.Close, nil
	case config.BackendRedis:
		redisClient, err := persistence.NewRedisClient(cfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot connect Redis: %w", err)
		}
		return persistence.NewRedisGateway(redisClient, cfg.Redis.Prefix, log), func() { redisClient.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func newInstanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "portfolio"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
}
