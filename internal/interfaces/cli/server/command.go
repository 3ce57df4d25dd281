// Package server implements the `filemart server` command.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	deviceUC "github.com/filemart-io/filemart/internal/application/device/usecases"
	downloadUC "github.com/filemart-io/filemart/internal/application/download/usecases"
	subscriptionUC "github.com/filemart-io/filemart/internal/application/subscription/usecases"
	"github.com/filemart-io/filemart/internal/infrastructure/auth"
	"github.com/filemart-io/filemart/internal/infrastructure/cache"
	"github.com/filemart-io/filemart/internal/infrastructure/config"
	"github.com/filemart-io/filemart/internal/infrastructure/database"
	"github.com/filemart-io/filemart/internal/infrastructure/migration"
	"github.com/filemart-io/filemart/internal/infrastructure/notification"
	"github.com/filemart-io/filemart/internal/infrastructure/repository"
	httpRouter "github.com/filemart-io/filemart/internal/interfaces/http"
	"github.com/filemart-io/filemart/internal/interfaces/http/handlers"
	"github.com/filemart-io/filemart/internal/interfaces/http/middleware"
	"github.com/filemart-io/filemart/internal/shared/biztime"
	"github.com/filemart-io/filemart/internal/shared/keylock"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the FileMart entitlement server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup (not recommended for production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == "debug"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting server", "environment", env, "auto_migrate", autoMigrate)

	if err := biztime.Init(cfg.Download.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if env == "production" {
			log.Warnw("auto-migration is enabled in production environment")
		}
		manager := migration.NewManager(env)
		if err := manager.Migrate(database.Get(), migration.AutoMigrateModels()...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Infow("auto-migration completed")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	db := database.Get()

	fileRepo := repository.NewFileRepository(db, log)
	subscriptionRepo := repository.NewSubscriptionRepository(db, log)
	usageRepo := repository.NewUsageRecordRepository(db, log)
	emailResolver := repository.NewUserEmailResolver(db)

	notifier := notification.NewEmailNotifier(&cfg.Email, emailResolver, log)
	catalogCache := cache.NewCatalogCache(redisClient, log)

	locks := keylock.New()

	currentSubscription := subscriptionUC.NewCurrentSubscriptionUseCase(subscriptionRepo, log)

	tokenValidity := time.Duration(cfg.Download.TokenValidityHours) * time.Hour
	issueToken := downloadUC.NewIssueTokenUseCase(usageRepo, fileRepo, notifier, catalogCache, locks, tokenValidity, log)
	requestDownload := downloadUC.NewRequestDownloadUseCase(fileRepo, subscriptionRepo, usageRepo, currentSubscription, issueToken, locks, log)
	redeemToken := downloadUC.NewRedeemTokenUseCase(usageRepo, fileRepo, log)

	trustDevice := deviceUC.NewTrustDeviceUseCase(subscriptionRepo, currentSubscription, notifier, locks, log)
	listDevices := deviceUC.NewListDevicesUseCase(currentSubscription, log)
	removeDevice := deviceUC.NewRemoveDeviceUseCase(subscriptionRepo, currentSubscription, locks, log)

	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)

	router := httpRouter.NewRouter(httpRouter.RouterConfig{
		DownloadHandler: handlers.NewDownloadHandler(requestDownload, redeemToken, log),
		DeviceHandler:   handlers.NewDeviceHandler(trustDevice, listDevices, removeDevice, log),
		CatalogHandler:  handlers.NewCatalogHandler(fileRepo, catalogCache, log),
		AuthMiddleware:  middleware.NewAuthMiddleware(jwtService, log),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
