package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "pixel-canvas/internal/handler/http"
	gormpersistence "pixel-canvas/internal/infra/persistence/gorm"
	"pixel-canvas/internal/infra/setup"
	redisstate "pixel-canvas/internal/infra/state/redis"
	"pixel-canvas/internal/middleware"
	"pixel-canvas/internal/service"
	"pixel-canvas/internal/tasks"
	"pixel-canvas/internal/worker"
)

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	HttpServer  *http.Server

	redisClientOpt asynq.RedisClientOpt
	scheduler      *asynq.Scheduler
}

// Handlers 汇总路由需要的全部 HTTP handler
type Handlers struct {
	Auth   *httpHandler.AuthHandler
	Canvas *httpHandler.CanvasHandler
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	db, err := setup.InitDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Infrastructure initialized successfully")

	// 4. 初始化 Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	canvasRepo := gormpersistence.NewGormCanvasRepository(db)
	cacheRepo := redisstate.NewRedisCanvasCacheRepository(redisClient, cfg.KeyPrefix)

	// 5. 初始化 Services
	authService, err := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	canvasService := service.NewCanvasService(canvasRepo, cacheRepo, tasks.NewAsynqPreviewEnqueuer(asynqClient), service.CanvasLimits{
		DefaultSize: cfg.CanvasGridSize,
		MaxSize:     cfg.CanvasMaxGridSize,
		PixelSize:   cfg.CanvasPixelSize,
		GridTTL:     cfg.GridCacheTTL,
	})
	previewService := service.NewPreviewService(canvasRepo, cacheRepo, cfg.CanvasPixelSize, cfg.PreviewTTL)
	log.Info("Services initialized")

	// 6. 初始化 Handlers 和 Worker
	handlers := Handlers{
		Auth:   httpHandler.NewAuthHandler(authService),
		Canvas: httpHandler.NewCanvasHandler(canvasService, previewService),
	}
	workerServer := worker.NewWorkerServer(redisClientOpt, previewService, log)

	// 7. 初始化 Gin Engine 和路由
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := NewRouter(cfg, log, handlers, cacheRepo)

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		Config:         cfg,
		Log:            log,
		DB:             db,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		AsynqServer:    workerServer,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}, nil
}

// NewLogger 按配置创建 logrus Logger，并同步到全局 logger
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	// 各层通过包级 logrus 记录日志
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	log.Infof("Logger initialized (Level: %s)", level.String())
	return log
}

// NewRouter 组装中间件和 /api 路由
func NewRouter(cfg *Config, log *logrus.Logger, h Handlers, limiter middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(middleware.CORS(cfg.CORSOrigin))
	if limiter != nil {
		router.Use(middleware.RateLimit(limiter, cfg.RateLimitMax, cfg.RateLimitWindow))
	}

	requireAuth := middleware.Auth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)

	api := router.Group("/api")
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
	}
	canvasRoutes := api.Group("/canvases")
	{
		canvasRoutes.GET("/public", h.Canvas.ListPublic)
		canvasRoutes.GET("", requireAuth, h.Canvas.ListMine)
		canvasRoutes.POST("", requireAuth, h.Canvas.Create)
		canvasRoutes.GET("/:id", optionalAuth, h.Canvas.Get)
		canvasRoutes.GET("/:id/editor", optionalAuth, h.Canvas.Editor)
		canvasRoutes.GET("/:id/preview.png", optionalAuth, h.Canvas.Preview)
		canvasRoutes.POST("/:id/update", requireAuth, h.Canvas.UpdateGrid)
		canvasRoutes.DELETE("/:id", requireAuth, h.Canvas.Delete)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	return router
}

// Start 启动 Worker、定时任务和 HTTP 服务器
func (a *App) Start() {
	go a.AsynqServer.Start()
	a.registerPeriodicTasks()

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() {
	scheduler := asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{
		Logger:   a.Log.WithField("component", "scheduler"),
		LogLevel: asynq.WarnLevel,
	})

	schedule := "@every 10m"
	task := asynq.NewTask(tasks.TypePublicPreviewsWarm, nil)
	entryID, err := scheduler.Register(schedule, task, asynq.Queue("low"))
	if err != nil {
		a.Log.Errorf("Could not register public preview warm-up task: %v", err)
		return
	}
	a.Log.Infof("Public preview warm-up registered with schedule '%s' (EntryID: %s)", schedule, entryID)

	a.scheduler = scheduler
	go func() {
		if err := scheduler.Run(); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
		}
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.scheduler != nil {
		a.scheduler.Shutdown()
	}
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Log.Errorf("Error closing database connection: %v", err)
			}
		}
	}
	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			entry.Error(errorMessage)
			return
		}
		switch {
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
