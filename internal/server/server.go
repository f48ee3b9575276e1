package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomshare/config"
	"roomshare/internal/handler"
	"roomshare/internal/middleware"
	"roomshare/internal/services"
	"roomshare/internal/transport/httpdto"
	"roomshare/internal/websocket"
	"roomshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

const shutdownTimeout = 5 * time.Second

type Handlers struct {
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Favorite     *handler.FavoriteHandler
	Listing      *handler.ListingHandler
	Upload       *handler.UploadHandler
	WebSocket    *websocket.Handler
}

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Auth *services.AuthService
	// Limiter is optional; sends are not rate limited without it.
	Limiter middleware.MessageLimiter
	Health  map[string]HealthCheck
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: logger.OrNop(l),
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers, deps Dependencies) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", s.health(deps.Health))

	// The websocket handshake authenticates itself; browsers cannot set
	// headers on it.
	s.engine.GET("/v1/ws", handlers.WebSocket.Connect)

	v1 := s.engine.Group("/v1", middleware.AuthMiddleware(deps.Auth))

	sendChain := []gin.HandlerFunc{}
	if deps.Limiter != nil {
		sendChain = append(sendChain, middleware.MessageRateLimitMiddleware(deps.Limiter, s.logger))
	}
	sendChain = append(sendChain, handlers.Message.Send)

	conversations := v1.Group("/conversations")
	{
		conversations.GET("", handlers.Conversation.List)
		conversations.POST("", handlers.Conversation.Create)
		conversations.GET("/exists", handlers.Conversation.Exists)
		conversations.GET("/:id/messages", handlers.Message.History)
		conversations.POST("/:id/messages", sendChain...)
		conversations.POST("/:id/read", handlers.Message.MarkRead)
	}

	favorites := v1.Group("/favorites")
	{
		favorites.GET("", handlers.Favorite.ListIDs)
		favorites.GET("/listings", handlers.Favorite.ListListings)
		favorites.GET("/:id", handlers.Favorite.Get)
		favorites.PUT("/:id", handlers.Favorite.Add)
		favorites.DELETE("/:id", handlers.Favorite.Remove)
		favorites.POST("/:id/toggle", handlers.Favorite.Toggle)
	}

	listings := v1.Group("/listings")
	{
		listings.GET("/:id/contact", handlers.Listing.Contact)
		listings.POST("/:id/conversation", handlers.Conversation.OpenForListing)
	}

	uploads := v1.Group("/uploads")
	{
		uploads.POST("/listing-images", handlers.Upload.ListingImage)
		uploads.POST("/avatar", handlers.Upload.Avatar)
	}
}

func (s *Server) health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				healthy = false
				status[name] = err.Error()
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, httpdto.Response[gin.H]{Success: false, Data: status, Error: "unhealthy", Code: "UNHEALTHY"})
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(status))
	}
}

// Start serves until ctx is cancelled or the process is signalled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(quit)

	select {
	case <-quit:
		s.logger.Infof("Quitting signal received, shutting down")
	case <-ctx.Done():
		s.logger.Infof("Context done, shutting down")
	case err := <-errCh:
		s.logger.ErrorCtx(ctx, "server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		return err
	}

	s.logger.Infof("Server stopped gracefully")
	return nil
}
