package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"pixel-canvas/internal/domain"
	"pixel-canvas/internal/repository"
)

// RedisCanvasCacheRepository 是 CanvasCacheRepository 接口的 Redis 实现
type RedisCanvasCacheRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCanvasCacheRepository 创建 RedisCanvasCacheRepository 实例
func NewRedisCanvasCacheRepository(client *redis.Client, keyPrefix string) *RedisCanvasCacheRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisCanvasCacheRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "pc:" // 默认前缀 "pc:" (pixel canvas)
	}
	return &RedisCanvasCacheRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// --- Key Generation Helpers ---
func (r *RedisCanvasCacheRepository) gridKey(canvasID uint) string {
	return fmt.Sprintf("%scanvas:%d:grid", r.keyPrefix, canvasID)
}

func (r *RedisCanvasCacheRepository) previewKey(canvasID uint) string {
	return fmt.Sprintf("%scanvas:%d:preview", r.keyPrefix, canvasID)
}

func (r *RedisCanvasCacheRepository) rateLimitKey(key string) string {
	return fmt.Sprintf("%sratelimit:%s", r.keyPrefix, key)
}

// GetGrid 获取缓存的网格数据
func (r *RedisCanvasCacheRepository) GetGrid(ctx context.Context, canvasID uint) (domain.GridRows, error) {
	key := r.gridKey(canvasID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis: failed to get grid for canvas %d from %s: %w", canvasID, key, err)
	}
	var rows domain.GridRows
	if err := json.Unmarshal(data, &rows); err != nil {
		// 缓存内容损坏时删除，调用方会回源数据库
		logrus.WithError(err).Warnf("redis: corrupted grid cache for canvas %d, dropping key %s", canvasID, key)
		_ = r.client.Del(ctx, key).Err()
		return nil, repository.ErrNotFound
	}
	return rows, nil
}

// SetGrid 缓存网格数据
func (r *RedisCanvasCacheRepository) SetGrid(ctx context.Context, canvasID uint, rows domain.GridRows, ttl time.Duration) error {
	key := r.gridKey(canvasID)
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal grid for canvas %d: %w", canvasID, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set grid for canvas %d on %s: %w", canvasID, key, err)
	}
	return nil
}

// GetPreview 获取缓存的 PNG 预览图
func (r *RedisCanvasCacheRepository) GetPreview(ctx context.Context, canvasID uint) ([]byte, error) {
	key := r.previewKey(canvasID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis: failed to get preview for canvas %d from %s: %w", canvasID, key, err)
	}
	return data, nil
}

// SetPreview 缓存 PNG 预览图
func (r *RedisCanvasCacheRepository) SetPreview(ctx context.Context, canvasID uint, png []byte, ttl time.Duration) error {
	key := r.previewKey(canvasID)
	if err := r.client.Set(ctx, key, png, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set preview for canvas %d on %s: %w", canvasID, key, err)
	}
	return nil
}

// Invalidate 删除画布相关的全部缓存 key
func (r *RedisCanvasCacheRepository) Invalidate(ctx context.Context, canvasID uint) error {
	keys := []string{r.gridKey(canvasID), r.previewKey(canvasID)}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: failed to invalidate cache for canvas %d: %w", canvasID, err)
	}
	return nil
}

// CheckRateLimit 检查给定 key 的请求频率是否超限，并递增计数。
func (r *RedisCanvasCacheRepository) CheckRateLimit(ctx context.Context, key string, limit int, duration time.Duration) (bool, error) {
	fullKey := r.rateLimitKey(key)
	// 使用 Pipeline 减少网络往返
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, duration)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: pipeline failed for rate limit check on key %s: %w", fullKey, err)
	}
	count, err := incrCmd.Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to get incr result for rate limit on key %s: %w", fullKey, err)
	}
	return count > int64(limit), nil
}

// 编译期检查
var _ repository.CanvasCacheRepository = (*RedisCanvasCacheRepository)(nil)
