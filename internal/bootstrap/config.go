package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"pixel-canvas/internal/infra/setup"
)

// Config 结构体用于存储从环境变量或 .env 文件加载的配置
type Config struct {
	DB              setup.DBConfig
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KeyPrefix       string // Redis Key 前缀
	JWTSecret       string
	JWTExpiryHours  int
	ServerPort      string
	LogLevel        string
	AppEnv          string // development/production
	CORSOrigin      string
	RateLimitMax    int
	RateLimitWindow time.Duration

	CanvasGridSize    int           // 新建画布默认边长
	CanvasPixelSize   int           // 编辑器每格像素边长，同时用于预览图
	CanvasMaxGridSize int           // 允许的最大边长
	PreviewTTL        time.Duration // 预览图缓存时间
	GridCacheTTL      time.Duration // 网格缓存时间
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load()

	cfg := &Config{
		DB: setup.DBConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			User:       os.Getenv("DB_USER"),
			Password:   os.Getenv("DB_PASSWORD"),
			Host:       os.Getenv("DB_HOST"),
			Port:       os.Getenv("DB_PORT"),
			Name:       os.Getenv("DB_NAME"),
			SQLitePath: os.Getenv("SQLITE_PATH"),
		},
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:       getEnv("REDIS_KEY_PREFIX", "pc:"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AppEnv:          getEnv("APP_ENV", "development"),
		CORSOrigin:      os.Getenv("CORS_ALLOWED_ORIGIN"),
		RateLimitWindow: time.Second,
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"REDIS_DB", 0, &cfg.RedisDB},
		{"JWT_EXPIRY_HOURS", 24, &cfg.JWTExpiryHours},
		{"RATE_LIMIT_MAX", 100, &cfg.RateLimitMax},
		{"CANVAS_GRID_SIZE", 32, &cfg.CanvasGridSize},
		{"CANVAS_PIXEL_SIZE", 20, &cfg.CanvasPixelSize},
		{"CANVAS_MAX_GRID_SIZE", 128, &cfg.CanvasMaxGridSize},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, v.def)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}
	previewSeconds, err := getEnvInt("PREVIEW_TTL_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	cfg.PreviewTTL = time.Duration(previewSeconds) * time.Second
	cacheSeconds, err := getEnvInt("GRID_CACHE_TTL_SECONDS", 600)
	if err != nil {
		return nil, err
	}
	cfg.GridCacheTTL = time.Duration(cacheSeconds) * time.Second

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	}
	if _, err := cfg.DB.DSN(); err != nil {
		return nil, err
	}
	if cfg.CanvasGridSize < 1 || cfg.CanvasGridSize > cfg.CanvasMaxGridSize {
		return nil, fmt.Errorf("CANVAS_GRID_SIZE must be between 1 and CANVAS_MAX_GRID_SIZE (%d)", cfg.CanvasMaxGridSize)
	}
	if cfg.CanvasPixelSize < 1 {
		return nil, fmt.Errorf("CANVAS_PIXEL_SIZE must be positive")
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return n, nil
}
