// Package main is the entry point for the paint quote service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/ai"
	"github.com/paintquote/backend/internal/cache"
	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/config"
	"github.com/paintquote/backend/internal/conversation"
	"github.com/paintquote/backend/internal/database"
	"github.com/paintquote/backend/internal/gateway"
	"github.com/paintquote/backend/internal/handler"
)

func main() {
	// Parse command line flags
	role := flag.String("role", "", "Service role: gateway or handler (overrides SERVICE_ROLE env var)")
	port := flag.String("port", "", "Server port (overrides SERVER_PORT env var)")
	flag.Parse()

	// Override environment variables if flags are provided
	if *role != "" {
		os.Setenv("SERVICE_ROLE", *role)
	}
	if *port != "" {
		os.Setenv("SERVER_PORT", *port)
	}

	cfg := config.New()

	roleModule := gatewayModule
	if cfg.IsHandler() {
		roleModule = handlerModule
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newGinEngine,
		),
		roleModule,
		fx.Invoke(startServer),
	)

	app.Run()
}

// handlerModule wires pricing, storage and conversations for the handler role.
var handlerModule = fx.Options(
	fx.Provide(
		newRateCard,
		newCalculator,
		newRedisClient,
		newQuoteCache,
		newSessionStore,
		newRepository,
		newAssistant,
		newConversationManager,
		newHandler,
	),
	fx.Invoke(registerHandler),
)

// gatewayModule proxies API calls to the handler service.
var gatewayModule = fx.Options(
	fx.Provide(gateway.NewGateway),
	fx.Invoke(registerGateway),
)

// newLogger creates a new zap logger based on the environment.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newGinEngine creates and configures a new Gin engine.
func newGinEngine(cfg *config.Config) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// CORS middleware
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	return engine
}

func newRateCard(cfg *config.Config, logger *zap.Logger) (*config.RateCard, error) {
	card, err := config.LoadRateCard(cfg.RateCardPath)
	if err != nil {
		return nil, err
	}
	card.ApplyEnvOverrides()

	logger.Info("Loaded rate card",
		zap.String("path", cfg.RateCardPath),
		zap.Int("products", len(card.Products)),
		zap.Float64("markup_percentage", card.Company.MarkupPercentage),
		zap.Float64("tax_rate", card.Company.TaxRate),
	)
	return card, nil
}

func newCalculator(card *config.RateCard) *calculator.Calculator {
	return calculator.New(card.CalculatorOptions()...)
}

func newRedisClient(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client, err := cache.NewRedisClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newQuoteCache(client *redis.Client, logger *zap.Logger) cache.Cache {
	return cache.NewRedisCache(client, logger)
}

func newSessionStore(client *redis.Client, cfg *config.Config, logger *zap.Logger) conversation.SessionStore {
	return cache.NewSessionStore(client, cfg.SessionTTL, logger)
}

func newRepository(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (database.Repository, error) {
	repo, err := database.NewRepository(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			repo.Close()
			return nil
		},
	})
	return repo, nil
}

// newAssistant returns nil when no OpenRouter key is configured.
func newAssistant(cfg *config.Config, logger *zap.Logger) ai.Completer {
	if !cfg.AssistantEnabled() {
		logger.Info("AI assistant disabled")
		return nil
	}
	return ai.NewOpenRouterClient(cfg.OpenRouterAPIKey, logger).
		WithBaseURL(cfg.OpenRouterURL).
		WithModel(cfg.OpenRouterModel)
}

func newConversationManager(
	calc *calculator.Calculator,
	store conversation.SessionStore,
	card *config.RateCard,
	assistant ai.Completer,
	logger *zap.Logger,
) *conversation.Manager {
	return conversation.NewManager(calc, store, card.Company, card.Catalog(), logger).
		WithAssistant(assistant)
}

func newHandler(
	repo database.Repository,
	quoteCache cache.Cache,
	calc *calculator.Calculator,
	card *config.RateCard,
	conversations *conversation.Manager,
	logger *zap.Logger,
) *handler.Handler {
	return handler.NewHandler(repo, quoteCache, calc, card.Company, conversations, logger)
}

func registerHandler(engine *gin.Engine, h *handler.Handler, logger *zap.Logger) {
	h.RegisterRoutes(engine.Group("/api/v1"))
	logger.Info("Handler routes registered")
}

func registerGateway(engine *gin.Engine, gw *gateway.Gateway, cfg *config.Config, logger *zap.Logger) {
	gw.RegisterRoutes(engine.Group("/api/v1"))
	logger.Info("Gateway routes registered",
		zap.String("handler_url", cfg.HandlerURL),
	)
}

// startServer starts the HTTP server for the configured role.
func startServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, engine *gin.Engine) {
	logger.Info("Starting service",
		zap.String("role", cfg.Role),
		zap.String("port", cfg.ServerPort),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"role":    cfg.Role,
			"service": gateway.ServiceName,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("Server starting", zap.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("Server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Server shutting down")
			return server.Shutdown(ctx)
		},
	})
}
