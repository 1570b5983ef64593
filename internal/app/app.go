package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/lunugate/server/internal/adapter/outbound/postgres"
	"github.com/lunugate/server/internal/module/notification"
	"github.com/lunugate/server/internal/module/provider/lunu"
	"github.com/lunugate/server/internal/shared/cache"
	"github.com/lunugate/server/internal/shared/config"
	"github.com/lunugate/server/internal/shared/database"
	"github.com/lunugate/server/internal/shared/logger"
	"github.com/lunugate/server/internal/shared/metrics"
	"github.com/lunugate/server/internal/shared/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App wires the reconciler together.
type App struct {
	config  *config.Config
	db      *gorm.DB
	redis   redis.UniversalClient
	router  *gin.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics

	notificationHandler *notification.Handler
	notificationService *notification.Service
	lunuClient          *lunu.Client
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{
		config:  cfg,
		logger:  log,
		metrics: metrics.New("lunugate"),
	}

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	// Initialize Redis (optional; the in-process locker covers a
	// single-instance deployment)
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("redis connection failed, falling back to in-process locking", zap.Error(err))
		} else {
			app.redis = redisClient
		}
	}

	// Initialize modules
	app.initModules()

	// Initialize router
	app.router = app.setupRouter()

	return app, nil
}

// initModules wires the notification pipeline.
func (a *App) initModules() {
	repo := postgres.NewNotificationRepository(a.db)
	orders := postgres.NewOrderGateway(a.db)
	a.lunuClient = lunu.NewClient(&a.config.Lunu, a.logger, a.metrics)

	var locks notification.Locker
	if a.redis != nil {
		locks = notification.NewRedisLocker(a.redis)
	} else {
		locks = notification.NewMemoryLocker()
	}

	a.notificationService = notification.NewService(
		repo,
		orders,
		a.lunuClient,
		locks,
		a.logger,
		a.metrics,
	)
	a.notificationHandler = notification.NewHandler(a.notificationService, a.logger)
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	// Set Gin mode based on environment
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.metrics))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhook routes
	webhooks := r.Group("/webhooks")
	a.notificationHandler.RegisterRoutes(webhooks)

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.redis != nil {
		if err := cache.Close(a.redis); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
