package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pixel-canvas/internal/domain"
	"pixel-canvas/internal/repository"
)

// GormCanvasRepository 是 CanvasRepository 接口的 GORM 实现
type GormCanvasRepository struct {
	db *gorm.DB
}

// NewGormCanvasRepository 创建 GormCanvasRepository 实例
func NewGormCanvasRepository(db *gorm.DB) *GormCanvasRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCanvasRepository")
	}
	return &GormCanvasRepository{db: db}
}

// FindByID 实现根据画布 ID 查找画布
func (r *GormCanvasRepository) FindByID(ctx context.Context, id uint) (*domain.Canvas, error) {
	var canvas domain.Canvas
	err := r.db.WithContext(ctx).First(&canvas, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCanvasNotFound
		}
		return nil, fmt.Errorf("gorm: find canvas by id %d: %w", id, err)
	}
	return &canvas, nil
}

// ListByOwner 实现按所有者列出画布
func (r *GormCanvasRepository) ListByOwner(ctx context.Context, userID uint) ([]domain.Canvas, error) {
	var canvases []domain.Canvas
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&canvases).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list canvases for user %d: %w", userID, err)
	}
	return canvases, nil
}

// ListPublic 实现列出公开画布
func (r *GormCanvasRepository) ListPublic(ctx context.Context) ([]domain.Canvas, error) {
	var canvases []domain.Canvas
	err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("updated_at DESC").
		Find(&canvases).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list public canvases: %w", err)
	}
	return canvases, nil
}

// Create 实现插入新画布
func (r *GormCanvasRepository) Create(ctx context.Context, canvas *domain.Canvas) error {
	if err := r.db.WithContext(ctx).Create(canvas).Error; err != nil {
		return fmt.Errorf("gorm: create canvas (user %d, title %q): %w", canvas.UserID, canvas.Title, err)
	}
	return nil
}

// UpdateGrid 实现整体替换网格数据
// 使用 Updates 以便 GORM 同时刷新 updated_at。
// MySQL 在数据未变化时 RowsAffected 为 0，因此先确认记录存在。
func (r *GormCanvasRepository) UpdateGrid(ctx context.Context, id uint, gridData string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Canvas{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("gorm: check canvas %d before update: %w", id, err)
	}
	if count == 0 {
		return repository.ErrCanvasNotFound
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Canvas{ID: id}).
		Updates(map[string]interface{}{"grid_data": gridData}).Error
	if err != nil {
		return fmt.Errorf("gorm: update grid for canvas %d: %w", id, err)
	}
	return nil
}

// Delete 实现删除画布
func (r *GormCanvasRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Canvas{}, id)
	if result.Error != nil {
		return fmt.Errorf("gorm: delete canvas %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrCanvasNotFound
	}
	return nil
}
