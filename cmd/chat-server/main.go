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

	"github.com/weiawesome/offershare/internal/cache"
	"github.com/weiawesome/offershare/internal/config"
	"github.com/weiawesome/offershare/internal/handler"
	"github.com/weiawesome/offershare/internal/idgen"
	"github.com/weiawesome/offershare/internal/matchtrigger"
	"github.com/weiawesome/offershare/internal/notify"
	"github.com/weiawesome/offershare/internal/registry"
	"github.com/weiawesome/offershare/internal/repository"
	"github.com/weiawesome/offershare/internal/router"
	"github.com/weiawesome/offershare/internal/service"
	"github.com/weiawesome/offershare/pkg/database"
	"github.com/weiawesome/offershare/pkg/jwt"
	pkglog "github.com/weiawesome/offershare/pkg/log"
	"github.com/weiawesome/offershare/pkg/middleware"
	"github.com/weiawesome/offershare/pkg/pubsub"
)

// Tokens are minted by the identity provider; this only bounds tokens we
// would sign ourselves.
const accessTokenDuration = 15 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "chat-server",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(cfg.Database.DatabaseOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	store := repository.NewGormStore(db, idgen.NewULIDGenerator())

	// Participant cache and cross-instance presence need redis
	var (
		participantCache cache.ParticipantCache = cache.NopCache{}
		presence         registry.Presence      = registry.NopPresence{}
	)
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisParticipantCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis cache")
		}
		participantCache = redisCache

		redisPresence, err := registry.NewRedisPresence(cfg.Redis, cfg.Presence, advertiseAddress(cfg))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis presence")
		}
		presence = redisPresence
		logger.Info().Str("address", cfg.Redis.Address).Msg("redis connected")
	}
	defer participantCache.Close()
	defer presence.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := presence.StartHeartbeat(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start presence heartbeat")
	}

	// Event bus
	bus, err := pubsub.NewPubSub(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize pubsub")
	}
	logger.Info().Str("driver", cfg.PubSub.Driver).Msg("pubsub initialized")

	// Core delivery path
	participants := cache.NewParticipantLoader(participantCache, store, cfg.Cache.TTL)
	conns := registry.NewLocal(presence)
	chatRouter := router.NewRouter(store, participants, conns, notify.NewPubSubNotifier(bus))
	chatService := service.NewChatService(store, participants)

	trigger := matchtrigger.NewTrigger(bus, chatService)
	go trigger.Run(ctx)

	// Auth
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, accessTokenDuration, cfg.Auth.Leeway)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": conns.Count()})
	})

	handler.NewHandler(chatService, chatRouter, conns, authMiddleware).RegisterRoutes(r)
	handler.NewWSHandler(conns, chatRouter, cfg.WebSocket).RegisterRoutes(r, authMiddleware)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("chat-server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down chat-server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server forced to shutdown")
	}

	conns.CloseAll()
	cancel()
	<-trigger.Done()
	presence.StopHeartbeat()

	if err := bus.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close pubsub")
	}

	logger.Info().Msg("chat-server stopped")
}

func advertiseAddress(cfg *config.Config) string {
	if cfg.Server.AdvertiseAddress != "" {
		return cfg.Server.AdvertiseAddress
	}
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%d", host, cfg.Server.Port)
}
