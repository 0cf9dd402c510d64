package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"pixel-canvas/internal/domain"
	"pixel-canvas/internal/pixelcanvas"
	"pixel-canvas/internal/repository"
)

// PreviewService 使用 RenderLoop 把画布渲染为 PNG，并缓存在 Redis 中
type PreviewService struct {
	canvasRepo repository.CanvasRepository
	cacheRepo  repository.CanvasCacheRepository
	cellSize   int
	ttl        time.Duration
}

// NewPreviewService 创建 PreviewService 实例。cacheRepo 为 nil 时每次都重新渲染。
func NewPreviewService(canvasRepo repository.CanvasRepository, cacheRepo repository.CanvasCacheRepository, cellSize int, ttl time.Duration) *PreviewService {
	if canvasRepo == nil {
		panic("CanvasRepository cannot be nil for PreviewService")
	}
	if cellSize <= 0 {
		cellSize = pixelcanvas.DefaultCellSize
	}
	return &PreviewService{canvasRepo: canvasRepo, cacheRepo: cacheRepo, cellSize: cellSize, ttl: ttl}
}

// Get 返回画布预览图，访问权限与画布详情相同。缓存命中时直接返回。
func (s *PreviewService) Get(ctx context.Context, canvasID, viewerID uint) ([]byte, error) {
	canvas, err := s.load(ctx, canvasID)
	if err != nil {
		return nil, err
	}
	if !canvas.VisibleTo(viewerID) {
		return nil, ErrForbidden
	}
	if s.cacheRepo != nil {
		png, err := s.cacheRepo.GetPreview(ctx, canvasID)
		if err == nil {
			return png, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			logrus.WithError(err).WithField("canvas_id", canvasID).Warn("Preview cache read failed")
		}
	}
	return s.renderAndStore(ctx, canvas)
}

// Refresh 重新渲染并缓存预览图，由 worker 在每次保存后调用
func (s *PreviewService) Refresh(ctx context.Context, canvasID uint) error {
	canvas, err := s.load(ctx, canvasID)
	if err != nil {
		return err
	}
	_, err = s.renderAndStore(ctx, canvas)
	return err
}

// WarmPublic 为缺少预览缓存的公开画布生成预览图，返回生成数量
func (s *PreviewService) WarmPublic(ctx context.Context) (int, error) {
	if s.cacheRepo == nil {
		return 0, nil
	}
	canvases, err := s.canvasRepo.ListPublic(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list public canvases: %w", err)
	}
	warmed := 0
	for i := range canvases {
		canvas := &canvases[i]
		if _, err := s.cacheRepo.GetPreview(ctx, canvas.ID); err == nil {
			continue
		}
		if _, err := s.renderAndStore(ctx, canvas); err != nil {
			logrus.WithError(err).WithField("canvas_id", canvas.ID).Warn("Failed to warm preview")
			continue
		}
		warmed++
	}
	return warmed, nil
}

// Render 把画布渲染为 PNG，不读写缓存。损坏的网格按全空网格渲染。
func (s *PreviewService) Render(canvas *domain.Canvas) ([]byte, error) {
	grid, err := storedGrid(canvas, logrus.WithField("canvas_id", canvas.ID))
	if err != nil {
		return nil, err
	}
	return pixelcanvas.RenderPNG(grid, s.cellSize)
}

func (s *PreviewService) renderAndStore(ctx context.Context, canvas *domain.Canvas) ([]byte, error) {
	logCtx := logrus.WithField("canvas_id", canvas.ID)
	png, err := s.Render(canvas)
	if err != nil {
		logCtx.WithError(err).Error("Failed to render preview")
		return nil, ErrInternalServer
	}
	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetPreview(ctx, canvas.ID, png, s.ttl); err != nil {
			logCtx.WithError(err).Warn("Failed to cache preview")
		}
	}
	return png, nil
}

func (s *PreviewService) load(ctx context.Context, canvasID uint) (*domain.Canvas, error) {
	canvas, err := s.canvasRepo.FindByID(ctx, canvasID)
	if err != nil {
		if errors.Is(err, repository.ErrCanvasNotFound) {
			return nil, ErrCanvasNotFound
		}
		return nil, fmt.Errorf("failed to load canvas %d: %w", canvasID, err)
	}
	if canvas == nil {
		return nil, ErrCanvasNotFound
	}
	return canvas, nil
}
