package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomshare/config"
	"roomshare/internal/events"
	"roomshare/internal/handler"
	"roomshare/internal/middleware"
	"roomshare/internal/query"
	"roomshare/internal/realtime"
	"roomshare/internal/redis"
	"roomshare/internal/repository"
	"roomshare/internal/server"
	"roomshare/internal/services"
	"roomshare/internal/storage"
	"roomshare/internal/websocket"
	"roomshare/pkg/database"
	"roomshare/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const backendMemory = "memory"

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.LogMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	health := map[string]server.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}

	var redisClient *goredis.Client
	if cfg.FeedBackend != backendMemory || cfg.CacheBackend != backendMemory {
		redisClient = redis.NewClient(redis.ConfigFrom(cfg))
		defer redisClient.Close()
		if err := redis.Ping(ctx, redisClient, cfg.StoreTimeout); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		health["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, redisClient, cfg.StoreTimeout) }
		l.Infof("Connected to redis at %s:%s", cfg.RedisHost, cfg.RedisPort)
	}

	feed := newFeed(cfg, redisClient, l)
	cache := query.NewCache(newCacheStore(cfg, redisClient), cfg.CacheTTL, l)

	opts := services.Options{StoreTimeout: cfg.StoreTimeout, Logger: l}
	market, conversations, profiles := buildMarketplace(db, feed, cache, opts)

	objects, err := storage.NewClient(ctx, storage.S3Config{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Endpoint:   cfg.S3Endpoint,
		PublicBase: cfg.S3PublicBase,
	}, l)
	if err != nil {
		log.Fatalf("Failed to configure object storage: %v", err)
	}
	media := services.NewMediaService(objects, profiles, cfg.MaxUploadMB, opts)

	auth := services.NewAuthService(cfg)
	bridge := realtime.NewBridge(feed, cache, conversations, l)
	hub := websocket.NewHub()
	go hub.Run(ctx)

	deps := server.Dependencies{Auth: auth, Health: health}
	if redisClient != nil {
		deps.Limiter = redis.NewRateLimiter(redisClient, redis.RateLimitConfig{
			MessageLimit:  cfg.MessageRateLimit,
			MessageWindow: cfg.MessageRateWindow,
		})
	} else {
		deps.Limiter = middleware.NewLocalMessageLimiter(cfg.MessageRateLimit, cfg.MessageRateWindow)
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Conversation: handler.NewConversationHandler(market),
		Message:      handler.NewMessageHandler(market),
		Favorite:     handler.NewFavoriteHandler(market),
		Listing:      handler.NewListingHandler(market),
		Upload:       handler.NewUploadHandler(media),
		WebSocket:    websocket.NewHandler(auth, hub, bridge, l),
	}, deps)

	if err := srv.Start(ctx); err != nil {
		l.ErrorCtx(ctx, "server stopped with error", zap.Error(err))
	}

	// Give in-flight watches a moment to release their subscriptions.
	deadline := time.Now().Add(2 * time.Second)
	for bridge.ActiveWatches() > 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
}

func newFeed(cfg *config.Config, client *goredis.Client, l *logger.Logger) events.Feed {
	if cfg.FeedBackend == backendMemory {
		l.Infof("Using in-process change feed")
		return events.NewMemoryFeed()
	}
	return events.NewRedisFeed(client, l)
}

func newCacheStore(cfg *config.Config, client *goredis.Client) query.Store {
	if cfg.CacheBackend == backendMemory {
		return query.NewMemoryStore()
	}
	return redis.NewQueryStore(client)
}

func buildMarketplace(db *gorm.DB, feed events.Publisher, cache *query.Cache, opts services.Options) (*services.Marketplace, *services.ConversationService, repository.ProfileRepository) {
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	listingRepo := repository.NewListingRepository(db)
	favRepo := repository.NewFavoriteRepository(db)

	conversations := services.NewConversationService(convRepo, msgRepo, profileRepo, listingRepo, opts)
	market := services.NewMarketplace(
		conversations,
		services.NewMessageService(db, convRepo, msgRepo, feed, opts),
		services.NewFavoriteService(favRepo, listingRepo, opts),
		services.NewContactService(listingRepo, profileRepo, convRepo, opts),
		cache,
	)
	return market, conversations, profileRepo
}
