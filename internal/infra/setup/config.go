package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DBConfig 描述数据库连接参数
type DBConfig struct {
	Driver     string // "mysql" 或 "sqlite"
	User       string
	Password   string
	Host       string
	Port       string
	Name       string
	SQLitePath string
}

// DSN 根据驱动构建数据库连接字符串 (DSN)
func (c DBConfig) DSN() (string, error) {
	switch c.Driver {
	case "mysql":
		if c.User == "" {
			return "", fmt.Errorf("DB_USER must be set for mysql driver")
		}
		host, port, name := c.Host, c.Port, c.Name
		if host == "" {
			host = "127.0.0.1"
		}
		if port == "" {
			port = "3306"
		}
		if name == "" {
			name = "pixel_canvas"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, host, port, name), nil
	case "sqlite", "":
		if c.SQLitePath == "" {
			return "pixel_canvas.db", nil
		}
		return c.SQLitePath, nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q (use mysql or sqlite)", c.Driver)
	}
}

// InitDB 初始化数据库连接
func InitDB(cfg DBConfig) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	if cfg.Driver == "mysql" {
		dialector = mysql.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "mysql" {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		// SQLite 只允许单个写连接
		sqlDB.SetMaxOpenConns(1)
	}
	logrus.WithField("driver", cfg.Driver).Info("Database connected")
	return db, nil
}

// InitRedis 初始化 Redis 连接并用 PING 验证
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxConnAge:   30 * time.Minute,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	logrus.WithField("addr", addr).Info("Redis connected")
	return client, nil
}
