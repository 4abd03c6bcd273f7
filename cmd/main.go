package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/cache"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/config"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/handler"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/notifier"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/repository"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/service"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/database"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/jwt"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/log"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/middleware"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/pubsub"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	log.Init(cfg.Log)
	logger := log.L()

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Migrate only the messages table; users belongs to the user service.
	if err := database.AutoMigrate(db, &domain.MessageModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}

	messageRepo := repository.NewGormMessageRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	convCache, err := cache.NewRedisConversationCache(cfg.Redis, cfg.Cache.Prefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create conversation cache")
	}
	defer convCache.Close()

	// Notification fan-out over the platform event bus.
	bus, err := pubsub.NewPubSub(cfg.Notify)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create event bus")
	}
	defer bus.Close()
	notify := notifier.NewPubSubNotifier(bus, 2*time.Second)

	// Optional delivery tap: mirrors every outgoing notification into
	// the service log.
	if cfg.NotifyTap {
		tap := notifier.NewTap(bus)
		if err := tap.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start notification tap")
		}
		defer tap.Stop()
	}

	messageService := service.NewMessageService(messageRepo, userRepo, convCache, cfg.Cache.TTL, notify)

	verifier, err := jwt.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token verifier")
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	httpHandler := handler.NewHandler(messageService, authMiddleware, bus)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	httpHandler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", addr).Str("db_driver", cfg.Database.Driver).Msg("message service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
