package repository

import (
	"context"
	"time"

	"pixel-canvas/internal/domain"
)

// CanvasCacheRepository 定义了画布热数据的缓存操作，通常由 Redis 实现。
type CanvasCacheRepository interface {
	// === Grid Cache ===

	// GetGrid 获取缓存的网格数据，未命中时返回 ErrNotFound。
	GetGrid(ctx context.Context, canvasID uint) (domain.GridRows, error)

	// SetGrid 缓存网格数据。ttl 为 0 表示不过期。
	SetGrid(ctx context.Context, canvasID uint, rows domain.GridRows, ttl time.Duration) error

	// === Preview Cache ===

	// GetPreview 获取缓存的 PNG 预览图，未命中时返回 ErrNotFound。
	GetPreview(ctx context.Context, canvasID uint) ([]byte, error)

	// SetPreview 缓存 PNG 预览图。
	SetPreview(ctx context.Context, canvasID uint, png []byte, ttl time.Duration) error

	// Invalidate 删除画布相关的全部缓存 key。
	Invalidate(ctx context.Context, canvasID uint) error

	// === Rate Limiting ===

	// CheckRateLimit 检查给定 key 的请求频率是否超限，并递增计数。
	// 返回 true 如果超限，false 如果未超限。
	CheckRateLimit(ctx context.Context, key string, limit int, duration time.Duration) (bool, error)
}
