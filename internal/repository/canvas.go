package repository

import (
	"context"

	"pixel-canvas/internal/domain"
)

// CanvasRepository 定义了画布数据在持久化存储 (数据库) 中的操作。
type CanvasRepository interface {
	// FindByID 根据画布 ID 查找画布，不存在时返回 ErrCanvasNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Canvas, error)

	// ListByOwner 按 updated_at 倒序返回某个用户的全部画布。
	ListByOwner(ctx context.Context, userID uint) ([]domain.Canvas, error)

	// ListPublic 按 updated_at 倒序返回公开画布。
	ListPublic(ctx context.Context) ([]domain.Canvas, error)

	// Create 插入新画布，成功后填充 ID 和时间戳。
	Create(ctx context.Context, canvas *domain.Canvas) error

	// UpdateGrid 整体替换画布的网格数据。画布不存在时返回 ErrCanvasNotFound。
	UpdateGrid(ctx context.Context, id uint, gridData string) error

	// Delete 删除画布。画布不存在时返回 ErrCanvasNotFound。
	Delete(ctx context.Context, id uint) error
}
